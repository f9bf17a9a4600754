package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/riseport-labs/rise-swap-hub/portal/chat"
	"github.com/riseport-labs/rise-swap-hub/portal/config"
	"github.com/riseport-labs/rise-swap-hub/portal/executor"
	"github.com/riseport-labs/rise-swap-hub/portal/router"
	"github.com/riseport-labs/rise-swap-hub/portal/rpc"
	"github.com/riseport-labs/rise-swap-hub/portal/threatintel"
	"github.com/riseport-labs/rise-swap-hub/portal/wallet"
)

var log zerolog.Logger

func init() {
	// Initialize zerolog with console writer
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log = zerolog.New(out).With().Timestamp().Logger()

	// Share the logger with the RPC package
	rpc.SetLogger(log)
}

// demoPrivateKey funds the shared demo account every authorized visitor
// drives. Not a secret: the simulated chain mints its balances at startup.
const demoPrivateKey = "0xf38c811b61dc42e9b2dfa664d2ae2302c4958b5ff6ab607186b70e76e86802a6"

func main() {
	// Parse command line flags
	configRPC := flag.String("config-rpc", "", "config file for the API server; empty loads SWAPHUB_* environment variables")
	configMarket := flag.String("config-market", "", "market catalog file; empty uses the path from the server config")
	fetchMarket := flag.String("fetch-market", "", "go-getter source to download the market catalog from before loading")
	flag.Parse()

	log.Info().
		Str("rpc_config", *configRPC).
		Msg("Starting RISE Swap Hub")

	// Load server configuration
	var rpcConfigPath *string
	if *configRPC != "" {
		rpcConfigPath = configRPC
	}
	cfg, err := config.LoadRPCPortalConfig(rpcConfigPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load server config")
	}

	marketPath := cfg.MarketConfigPath
	if *configMarket != "" {
		marketPath = *configMarket
	}

	// Optionally pull the market catalog from a remote source first
	if *fetchMarket != "" {
		log.Info().Str("src", *fetchMarket).Str("dst", marketPath).Msg("Fetching market catalog")
		if err := config.FetchMarketConfig(*fetchMarket, marketPath); err != nil {
			log.Fatal().Err(err).Msg("Failed to fetch market catalog")
		}
	}

	// Load the market catalog and build the routing engine
	market, err := config.NewMarketLoader().LoadMarket(marketPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load market catalog")
	}
	registry, err := router.NewRegistry(*market)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build pool registry")
	}
	finder := router.NewFinder(registry)

	log.Info().
		Int("pools", registry.PoolCount()).
		Strs("tokens", registry.SupportedTokens()).
		Msg("Pool registry ready")

	// Simulated chain client
	client := executor.NewSimulatedClient(executor.Config{
		NetworkName: cfg.NetworkName,
		ChainID:     cfg.ChainID,
		RPCURL:      cfg.RPCURL,
		ExplorerURL: cfg.ExplorerURL,
	})

	// Wallet manager over the chain client
	demoKey := os.Getenv("SWAPHUB_DEMO_PRIVATE_KEY")
	if demoKey == "" {
		demoKey = demoPrivateKey
	}
	wallets := wallet.NewManager(wallet.Config{
		Client:         client,
		Vault:          wallet.NewVault(os.Getenv("SWAPHUB_MASTER_PASSWORD")),
		DemoPrivateKey: demoKey,
		ExplorerURL:    cfg.ExplorerURL,
	})

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect the demo wallet up front so the first chat message does not
	// pay the connection cost
	if session, err := wallets.ConnectPrivateKey(ctx, demoKey); err != nil {
		log.Error().Err(err).Msg("Demo wallet connection failed")
	} else {
		log.Info().Str("address", session.Address).Msg("Demo wallet connected")
	}

	// Conversational agent over the finder and the wallet manager
	agent := chat.NewAgent(chat.Config{
		Finder:      finder,
		Executor:    wallets,
		ExplorerURL: cfg.ExplorerURL,
	})

	// Address verification sources, primary first
	intelConfig := threatintel.Config{}
	if len(cfg.IntelSourceURLs) > 0 {
		intelConfig.GoPlusURL = cfg.IntelSourceURLs[0]
	}
	if len(cfg.IntelSourceURLs) > 1 {
		intelConfig.EtherScamDBURL = cfg.IntelSourceURLs[1]
	}
	detector := threatintel.NewDetector(intelConfig)

	// Create the API server configuration
	serverConfig := buildServerConfig(cfg)

	// Create the API server
	server, err := rpc.NewServer(ctx, serverConfig, &rpc.Services{
		Finder:         finder,
		Agent:          agent,
		Wallets:        wallets,
		Intel:          detector,
		DemoPrivateKey: demoKey,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create API server")
	}

	// Setup signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Error().Err(err).Msg("Server error")
			sigCh <- syscall.SIGTERM
		}
	}()

	// Wait for shutdown signal
	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Shutdown error")
	}
}

// buildServerConfig converts the loaded RPCPortalConfig to rpc.ServerConfig
func buildServerConfig(cfg *config.RPCPortalConfig) *rpc.ServerConfig {
	serverConfig := &rpc.ServerConfig{
		Address:        cfg.Host + ":" + itoa(cfg.Port),
		AllowedOrigins: cfg.AllowedOrigins,
		EnableMetrics:  cfg.UsePrometheus, // Enable metrics endpoint if prometheus is enabled
	}

	// Set rate limiting if configured
	if cfg.RatePerMinute > 0 {
		serverConfig.RatePerMinute = &cfg.RatePerMinute
	}
	if cfg.MaxConcurrentRequests > 0 {
		serverConfig.Burst = &cfg.MaxConcurrentRequests
	}

	// Set OpenTelemetry configuration if any telemetry is enabled
	if cfg.EnableTracing || cfg.EnableMetrics || cfg.EnableLogs || cfg.UsePrometheus {
		serverConfig.OTelConfig = &rpc.OTelConfig{
			ServiceName:     defaultString(cfg.ServiceName, "rise-swap-hub"),
			ServiceVersion:  defaultString(cfg.ServiceVersion, "1.0.0"),
			Environment:     defaultString(cfg.Environment, "development"),
			EnableTracing:   cfg.EnableTracing,
			UseOTLPTraces:   cfg.UseOTLPTraces,
			OTLPTracesURL:   cfg.OTLPTracesURL,
			EnableMetrics:   cfg.EnableMetrics,
			UsePrometheus:   cfg.UsePrometheus,
			UseOTLPMetrics:  cfg.UseOTLPMetrics,
			OTLPMetricsURL:  cfg.OTLPMetricsURL,
			EnableLogs:      cfg.EnableLogs,
			UseOTLPLogs:     cfg.UseOTLPLogs,
			OTLPLogsURL:     cfg.OTLPLogsURL,
			InsecureOTLP:    cfg.InsecureOTLP,
			DevelopmentMode: cfg.DevelopmentMode,
		}
	}

	return serverConfig
}

// itoa converts int to string without importing strconv
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var buf [20]byte
	pos := len(buf)
	negative := i < 0
	if negative {
		i = -i
	}
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if negative {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

// defaultString returns the default value if s is empty
func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
