package main

import (
	"fmt"
	"os"

	"github.com/signadot/objyaml/debug"
	"github.com/signadot/objyaml/load"
	"github.com/signadot/objyaml/symbol"
)

const (
	EnvEnv = "OBJYAML_ENV"
)

// loadEnv reads default expansion variables from $OBJYAML_ENV, which may
// hold a mapping such as '{nvis: 784, run: baseline}'.
func loadEnv() (map[string]any, error) {
	envEnv := os.Getenv(EnvEnv)
	if envEnv == "" {
		return nil, nil
	}
	v, err := load.LoadString(envEnv, load.WithNamespace(symbol.NewNamespace()))
	if err != nil {
		return nil, fmt.Errorf("error decoding env $%s: %w", EnvEnv, err)
	}
	env, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("error decoding env $%s: wrong type %T", EnvEnv, v)
	}
	if debug.Expand() {
		debug.Logf("loaded env from $%s: %v\n", EnvEnv, env)
	}
	return env, nil
}

// mergeEnv adds the variables of def which env does not set.
func mergeEnv(env, def map[string]any) {
	for k, v := range def {
		if _, present := env[k]; !present {
			env[k] = v
		}
	}
}
