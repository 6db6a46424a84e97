// Package server assembles the MCP server: upstream client, cache and
// the full tool set, served over stdio.
package server

import (
	"context"

	"github.com/chembridge/mychem-mcp/cache"
	"github.com/chembridge/mychem-mcp/config"
	"github.com/chembridge/mychem-mcp/mychem"
	"github.com/chembridge/mychem-mcp/tools"
	"github.com/chembridge/mychem-mcp/tools/admet"
	"github.com/chembridge/mychem-mcp/tools/annotation"
	"github.com/chembridge/mychem-mcp/tools/batch"
	"github.com/chembridge/mychem-mcp/tools/bioactivity"
	"github.com/chembridge/mychem-mcp/tools/biocontext"
	"github.com/chembridge/mychem-mcp/tools/clinical"
	"github.com/chembridge/mychem-mcp/tools/drug"
	"github.com/chembridge/mychem-mcp/tools/export"
	"github.com/chembridge/mychem-mcp/tools/mapping"
	"github.com/chembridge/mychem-mcp/tools/metadata"
	"github.com/chembridge/mychem-mcp/tools/patent"
	"github.com/chembridge/mychem-mcp/tools/query"
	"github.com/chembridge/mychem-mcp/tools/structure"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	mcp "github.com/metoro-io/mcp-golang"
	"github.com/metoro-io/mcp-golang/transport/stdio"
	"github.com/redis/go-redis/v9"
)

var logger = xlog.NewPackageLogger("github.com/chembridge/mychem-mcp", "server")

// Name and Version identify the server to MCP clients.
const (
	Name    = "mychem-mcp"
	Version = "0.3.0"
)

// NewClient builds the upstream client from the configuration.
func NewClient(cfg *config.Config) *mychem.Client {
	opts := []mychem.Option{}
	if cfg.CacheEnabled {
		var respCache cache.Cache
		if cfg.RedisAddr != "" {
			respCache = cache.NewRedis(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}), Name)
		} else {
			respCache = cache.NewMemory()
		}
		opts = append(opts, mychem.WithCache(respCache, cfg.CacheTTL))
	}
	return mychem.New(mychem.Config{
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.Timeout,
		Retries:   cfg.Retries,
		RateLimit: cfg.RateLimit,
	}, opts...)
}

// Tools builds the full tool set bound to the client.
func Tools(c *mychem.Client) ([]tools.IMCPTool, error) {
	factories := []func(*mychem.Client) ([]tools.IMCPTool, error){
		query.New,
		annotation.New,
		batch.New,
		structure.New,
		drug.New,
		admet.New,
		patent.New,
		clinical.New,
		metadata.New,
		mapping.New,
		bioactivity.New,
		biocontext.New,
		export.New,
	}
	var all []tools.IMCPTool
	for _, factory := range factories {
		list, err := factory(c)
		if err != nil {
			return nil, err
		}
		all = append(all, list...)
	}
	return all, nil
}

// Register adds every tool to the MCP registrator.
func Register(registrator tools.McpServerRegistrator, list []tools.IMCPTool) error {
	for _, tool := range list {
		if err := tool.RegisterMCP(registrator); err != nil {
			return errors.WithMessagef(err, "failed to register tool %q", tool.Name())
		}
	}
	return nil
}

// Serve runs the MCP server over stdio until the context is cancelled.
func Serve(ctx context.Context, cfg *config.Config) error {
	client := NewClient(cfg)
	list, err := Tools(client)
	if err != nil {
		return err
	}

	srv := mcp.NewServer(stdio.NewStdioServerTransport(),
		mcp.WithName(Name),
		mcp.WithVersion(Version),
	)
	if err := Register(srv, list); err != nil {
		return err
	}

	logger.KV(xlog.INFO,
		"server", Name,
		"version", Version,
		"tools", len(list),
		"base_url", cfg.BaseURL,
	)
	if err := srv.Serve(); err != nil {
		return errors.WithMessage(err, "mcp server failed")
	}

	<-ctx.Done()
	return nil
}
