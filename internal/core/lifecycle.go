package core

import (
	"context"

	"gopkg.in/yaml.v3"
)

// The lifecycle interfaces below are all optional. LoadModules probes each
// instantiated module for them in order: Configure, Provision, Validate.
// Start and Stop run later, from App.

// Configurable receives the raw YAML node of the module's config section,
// before Provision.
type Configurable interface {
	Configure(node *yaml.Node) error
}

// Provisioner sets the module up: fill defaults, open resources, register
// services on the AppContext.
type Provisioner interface {
	Provision(ctx *AppContext) error
}

// Validator checks that the provisioned module is ready to start. Validate
// must not mutate the module.
type Validator interface {
	Validate() error
}

// Starter begins the module's background work: goroutines, listeners,
// pollers.
type Starter interface {
	Start() error
}

// Stopper releases the module's resources. Stop runs during shutdown in
// reverse start order.
type Stopper interface {
	Stop(ctx context.Context) error
}
