// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var sectionErrors = map[string]error{
	"Storage": ErrInvalidStorageConfigs,
	"Session": ErrInvalidSessionConfigs,
	"KDF":     ErrInvalidKDFConfigs,
	"Log":     ErrInvalidLogConfigs,
	"Workers": ErrInvalidWorkerConfigs,
}

// validate checks that the resolved [Config] satisfies all application
// invariants before it is used at startup. The first failing field decides
// which sentinel is returned.
func (cfg *Config) validate() error {
	err := validator.New().Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	first := verrs[0]
	// StructNamespace is "Config.<Section>.<Field>".
	parts := strings.Split(first.StructNamespace(), ".")
	if len(parts) >= 2 {
		if sentinel, ok := sectionErrors[parts[1]]; ok {
			return fmt.Errorf("%w: %s failed %q", sentinel, first.Field(), first.Tag())
		}
	}
	return err
}
