package main

import (
	"context"
	"net/http"
	"os"

	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"

	"github.com/linkrel/hypermedia/internal/pkg/application/registry"
	"github.com/linkrel/hypermedia/internal/pkg/infrastructure/router"
	api "github.com/linkrel/hypermedia/internal/pkg/presentation/api/hypermedia"
)

const appName string = "hypermedia-api"

func main() {
	appVersion := buildinfo.SourceVersion()

	ctx, log, cleanup := o11y.Init(context.Background(), appName, appVersion, "json")
	defer cleanup()

	configPath := env.GetVariableOrDefault(ctx, "RESOURCES_CONFIG_FILE", "/opt/hypermedia/config/resources.yaml")
	policyPath := env.GetVariableOrDefault(ctx, "AUTHZ_POLICY_FILE", "/opt/hypermedia/config/authz.rego")

	configFile, err := os.Open(configPath)
	if err != nil {
		log.Error("failed to open resources configuration", "path", configPath, "err", err.Error())
		os.Exit(1)
	}
	defer configFile.Close()

	cfg, err := registry.LoadConfiguration(configFile)
	if err != nil {
		log.Error("failed to load resources configuration", "err", err.Error())
		os.Exit(1)
	}

	app, err := registry.New(ctx, *cfg)
	if err != nil {
		log.Error("failed to create resource registry", "err", err.Error())
		os.Exit(1)
	}

	policyFile, err := os.Open(policyPath)
	if err != nil {
		log.Error("failed to open authz policies", "path", policyPath, "err", err.Error())
		os.Exit(1)
	}
	defer policyFile.Close()

	r := router.New(appName)

	err = api.RegisterHandlers(ctx, r, policyFile, app)
	if err != nil {
		log.Error("failed to register handlers", "err", err.Error())
		os.Exit(1)
	}

	port := env.GetVariableOrDefault(ctx, "SERVICE_PORT", "8080")
	log.Info("starting to listen for connections", "port", port)

	err = http.ListenAndServe(":"+port, r)
	if err != nil {
		log.Error("failed to listen for connections", "err", err.Error())
		os.Exit(1)
	}
}
