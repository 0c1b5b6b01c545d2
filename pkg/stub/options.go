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

package stub

import (
	"fmt"
	"os"
	"time"

	"github.com/mcuadros/go-defaults"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Options configure the stub users API.
type Options struct {
	// ListenAddress is only used by the standalone binary.
	ListenAddress string `yaml:"listen_address" default:":8080"`
	// Prefix is prepended to every users route, e.g. /api/users.
	Prefix string `yaml:"prefix" default:"/api"`
	// PerPage is the page size used when the client does not ask for one.
	PerPage int `yaml:"per_page" default:"6"`
	// APIKey, when set, must be presented in the x-api-key header.
	APIKey           string        `yaml:"api_key"`
	MetricsNamespace string        `yaml:"metrics_namespace" default:"users_stub"`
	ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
	WriteTimeout     time.Duration `yaml:"write_timeout" default:"10s"`
	ShutdownTimeout  time.Duration `yaml:"shutdown_timeout" default:"5s"`
}

// NewOptions returns options with all defaults applied.
func NewOptions() *Options {
	o := &Options{}
	defaults.SetDefaults(o)

	return o
}

// LoadOptions reads options from a YAML file, unset fields take their defaults.
func LoadOptions(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading stub options: %w", err)
	}

	return LoadOptionsString(string(data))
}

func LoadOptionsString(data string) (*Options, error) {
	var o Options

	if err := yaml.Unmarshal([]byte(os.ExpandEnv(data)), &o); err != nil {
		return nil, fmt.Errorf("parsing stub options: %w", err)
	}

	defaults.SetDefaults(&o)

	return &o, nil
}

// AddFlags registers command line overrides.
func (o *Options) AddFlags(f *pflag.FlagSet) {
	f.StringVar(&o.ListenAddress, "listen-address", o.ListenAddress, "Address to listen on.")
	f.StringVar(&o.Prefix, "prefix", o.Prefix, "Path prefix for the users routes.")
	f.IntVar(&o.PerPage, "per-page", o.PerPage, "Default page size for user listings.")
	f.StringVar(&o.APIKey, "api-key", o.APIKey, "Require this value in the x-api-key header.")
	f.DurationVar(&o.ReadTimeout, "read-timeout", o.ReadTimeout, "HTTP server read timeout.")
	f.DurationVar(&o.WriteTimeout, "write-timeout", o.WriteTimeout, "HTTP server write timeout.")
	f.DurationVar(&o.ShutdownTimeout, "shutdown-timeout", o.ShutdownTimeout, "Graceful shutdown timeout.")
}
