/*
Copyright 2026 Nscale.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"errors"
	goflag "flag"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/pflag"

	"github.com/unikorn-cloud/users-acceptance/pkg/constants"
	"github.com/unikorn-cloud/users-acceptance/pkg/stub"

	cr "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
)

// configPath finds --config ahead of the real parse so that the file provides
// the defaults and any other flag on the command line overrides it.
func configPath(args []string) string {
	flags := pflag.NewFlagSet("config", pflag.ContinueOnError)
	flags.ParseErrorsWhitelist.UnknownFlags = true
	flags.Usage = func() {}

	path := flags.String("config", "", "")

	// Help and unknown flags are reported by the real parse.
	_ = flags.Parse(args)

	return *path
}

func loadOptions(args []string) (*stub.Options, error) {
	path := configPath(args)
	if path == "" {
		return stub.NewOptions(), nil
	}

	return stub.LoadOptions(path)
}

func run(ctx context.Context, options *stub.Options) error {
	logger := log.FromContext(ctx)

	server, err := stub.New(options, logger.WithName("stub"), nil)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         options.ListenAddress,
		Handler:      server.Handler(),
		ReadTimeout:  options.ReadTimeout,
		WriteTimeout: options.WriteTimeout,
	}

	errs := make(chan error, 1)

	go func() {
		logger.Info("listening", "address", options.ListenAddress, "prefix", options.Prefix)

		errs <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return fmt.Errorf("serving users api: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	// The signal context is already done, shutdown needs its own deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), options.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down users api: %w", err)
	}

	if err := <-errs; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving users api: %w", err)
	}

	return nil
}

func main() {
	options, err := loadOptions(os.Args[1:])
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	var configFile string

	zapOptions := zap.Options{}
	zapOptions.BindFlags(goflag.CommandLine)

	pflag.StringVar(&configFile, "config", "", "YAML file holding stub options, flags override it.")
	options.AddFlags(pflag.CommandLine)
	pflag.CommandLine.AddGoFlagSet(goflag.CommandLine)
	pflag.Parse()

	log.SetLogger(zap.New(zap.UseFlagOptions(&zapOptions)))

	logger := log.Log.WithName("init")
	logger.Info("service starting", "version", constants.VersionString())

	ctx := log.IntoContext(cr.SetupSignalHandler(), log.Log)

	if err := run(ctx, options); err != nil {
		logger.Error(err, "users api stub failed")
		os.Exit(1)
	}
}
