package main

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/mod/modfile"

	"github.com/kolkov/rlu/rlu"
)

var errNotRequired = errors.New("module does not require the engine")

// modRequirement is what a dependent go.mod says about the engine.
type modRequirement struct {
	Module   string // the dependent's own module path
	Version  string // required engine version
	Replaced bool   // a replace directive points the engine elsewhere
	Local    bool   // the replacement is a filesystem path

	// ReplaceVersion is the version a module replacement resolves to.
	ReplaceVersion string
}

// readRequirement parses goModPath and extracts its engine requirement.
func readRequirement(goModPath string) (*modRequirement, error) {
	data, err := os.ReadFile(goModPath)
	if err != nil {
		return nil, err
	}

	modFile, err := modfile.Parse(goModPath, data, nil)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", goModPath, err)
	}

	req := &modRequirement{}
	if modFile.Module != nil {
		req.Module = modFile.Module.Mod.Path
	}

	found := false
	for _, r := range modFile.Require {
		if r.Mod.Path == rlu.ModulePath {
			req.Version = r.Mod.Version
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", errNotRequired, goModPath)
	}

	// A replacement of the exact version wins over a wildcard one.
	exact := false
	for _, rep := range modFile.Replace {
		if rep.Old.Path != rlu.ModulePath || exact {
			continue
		}
		if rep.Old.Version != "" {
			if rep.Old.Version != req.Version {
				continue
			}
			exact = true
		}
		req.Replaced = true
		req.Local = rep.New.Version == ""
		req.ReplaceVersion = rep.New.Version
	}
	return req, nil
}

// effective is the engine version the dependent actually builds against.
func (r *modRequirement) effective() string {
	if r.Replaced && !r.Local {
		return r.ReplaceVersion
	}
	return r.Version
}

// compatible reports whether this build satisfies the requirement. A local
// replacement builds against whatever source it points at, so it always
// matches.
func (r *modRequirement) compatible() bool {
	if r.Local {
		return true
	}
	return rlu.Compatible(r.effective())
}
