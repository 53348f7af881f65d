package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/foomo/contentserver/requests"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/foomo/ribbon/command"
	"github.com/foomo/ribbon/content"
	"github.com/foomo/ribbon/mcp"
	"github.com/foomo/ribbon/notify"
	"github.com/foomo/ribbon/policy"
	"github.com/foomo/ribbon/service"
	"github.com/foomo/ribbon/sheer"
)

func main() {
	// Define command line flags
	configPath := flag.String("config", "", "Path to the yaml config file")
	httpAddr := flag.String("http", "", "Editor HTTP address, overrides the config (e.g., ':8080')")
	mcpAddr := flag.String("mcp-http", "", "MCP streamable HTTP address, overrides the config")
	stdioMode := flag.Bool("stdio", false, "Serve the MCP tools on stdio instead of HTTP")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	config, err := loadConfig(*configPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}
	if *httpAddr != "" {
		config.HTTPAddr = *httpAddr
	}
	if *mcpAddr != "" {
		config.MCPAddr = *mcpAddr
	}

	memory, err := loadTree(config)
	if err != nil {
		logger.Fatal("failed to load content tree", zap.Error(err))
	}

	broker := notify.NewBroker()
	memory.SetListener(broker)

	serviceInstance := service.NewServer(
		logger,
		memory,
		registry(memory),
		policies(config),
		broker,
		config.Ribbon,
		streamConfig(config),
	)

	if *stdioMode {
		logger.Info("starting MCP server on stdio")
		if err := mcpserver.ServeStdio(mcp.NewServer(serviceInstance)); err != nil {
			logger.Fatal("MCP server failed", zap.Error(err))
		}
		return
	}

	if config.MCPAddr != "" {
		go func() {
			logger.Info("starting MCP server", zap.String("addr", config.MCPAddr))
			httpServer := mcpserver.NewStreamableHTTPServer(mcp.NewServer(serviceInstance))
			if err := httpServer.Start(config.MCPAddr); err != nil {
				logger.Fatal("MCP server failed", zap.Error(err))
			}
		}()
	}

	logger.Info("starting editor server", zap.String("addr", config.HTTPAddr))
	if err := http.ListenAndServe(config.HTTPAddr, serviceInstance.Handler()); err != nil {
		logger.Fatal("editor server failed", zap.Error(err))
	}
}

// loadTree builds the content tree, from a contentserver export when
// configured, otherwise empty.
func loadTree(config Config) (*content.Memory, error) {
	if config.ContentServer.URL == "" {
		return content.NewMemory(config.Database, config.Language), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	memory, err := content.LoadFromContentServer(ctx, nil, content.ContentServerSettings{
		ServerURL: config.ContentServer.URL,
		Env:       &requests.Env{},
		Database:  config.Database,
		Language:  config.Language,
		RootPath:  config.ContentServer.RootPath,
		MimeTypes: config.ContentServer.MimeTypes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load from contentserver %q: %w", config.ContentServer.URL, err)
	}
	return memory, nil
}

// registry wires the built-in editor commands.
func registry(memory *content.Memory) command.Registry {
	inProc := command.NewInProc()
	inProc.Register("webedit:save", func(msg command.Message, item *content.Item) error {
		if item == nil {
			return fmt.Errorf("nothing to save")
		}
		memory.Save(item.ID, item.Language)
		return nil
	}, nil)
	inProc.Register("webedit:open", func(msg command.Message, item *content.Item) error {
		return nil
	}, nil)
	return inProc
}

func policies(config Config) policy.Checker {
	if len(config.Policies) == 0 {
		return policy.AllowAll{}
	}
	return policy.Static(config.Policies)
}

func streamConfig(config Config) sheer.Config {
	streamConfig := sheer.DefaultConfig()
	if config.Stream.KeepaliveSeconds > 0 {
		streamConfig.KeepaliveInterval = time.Duration(config.Stream.KeepaliveSeconds) * time.Second
	}
	if config.Stream.BufferSize > 0 {
		streamConfig.BufferSize = config.Stream.BufferSize
	}
	return streamConfig
}
