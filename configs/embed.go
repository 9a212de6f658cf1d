// Package configs provides embedded configuration templates for oeismatch.
//
// Templates are embedded at build time using Go's //go:embed directive so
// they are available in all distributions (go install, binary releases).
//
// Configuration Hierarchy (see internal/config/config.go Load()):
//  1. Hardcoded defaults (internal/config/config.go NewConfig())
//  2. User config (~/.config/oeismatch/config.yaml)
//  3. Project config (.oeismatch.yaml)
//  4. Environment variables (OEISMATCH_*)
//
// To modify templates, edit the .yaml files in this directory and rebuild.
package configs

import _ "embed"

// UserConfigTemplate is the template for user/machine-level configuration.
// Created by: `oeismatch config init` at ~/.config/oeismatch/config.yaml
// Contains: dump/index paths and machine-wide search budgets.
//
//go:embed user-config.example.yaml
var UserConfigTemplate string

// ProjectConfigTemplate is the template for project-level configuration.
// Created at .oeismatch.yaml in a project root; settings that are
// version-controlled alongside a project that embeds the matcher.
//
//go:embed project-config.example.yaml
var ProjectConfigTemplate string
