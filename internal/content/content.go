// Package content loads the static rules tables (classes, status effects,
// spell schools) into the immutable catalogs shared by every character.
package content

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/cory-johannsen/rpgrules/internal/game/condition"
	"github.com/cory-johannsen/rpgrules/internal/game/ruleset"
)

// Table directories inside a content filesystem.
const (
	ClassesDir = "classes"
	EffectsDir = "effects"
	SchoolsDir = "schools"
)

//go:embed tables
var embedded embed.FS

// Bundle groups the catalogs loaded from one content source.
// Every catalog is read-only and safe to share across sessions.
type Bundle struct {
	Classes *ruleset.ClassCatalog
	Schools *ruleset.SchoolCatalog
	Effects *condition.Registry
}

// Embedded returns the tables compiled into the binary, rooted so that
// ClassesDir, EffectsDir, and SchoolsDir are top-level directories.
func Embedded() fs.FS {
	sub, err := fs.Sub(embedded, "tables")
	if err != nil {
		panic(fmt.Sprintf("content.Embedded: %v", err))
	}
	return sub
}

// Default loads the embedded tables.
//
// Postcondition: Returns a fully validated Bundle or a non-nil error.
func Default() (*Bundle, error) {
	return Load(Embedded())
}

// LoadDir loads tables from a directory on disk. An empty dir loads the
// embedded tables.
func LoadDir(dir string) (*Bundle, error) {
	if dir == "" {
		return Default()
	}
	return Load(os.DirFS(dir))
}

// Load reads the classes, effects, and schools tables from fsys and
// cross-checks the references between them.
//
// Precondition: fsys must contain ClassesDir, EffectsDir, and SchoolsDir.
// Postcondition: Returns a Bundle whose immunity references all resolve, or a non-nil error.
func Load(fsys fs.FS) (*Bundle, error) {
	classes, err := ruleset.LoadClasses(fsys, ClassesDir)
	if err != nil {
		return nil, fmt.Errorf("loading classes: %w", err)
	}
	classCat, err := ruleset.NewClassCatalog(classes)
	if err != nil {
		return nil, fmt.Errorf("loading classes: %w", err)
	}

	schools, err := ruleset.LoadSchools(fsys, SchoolsDir)
	if err != nil {
		return nil, fmt.Errorf("loading spell schools: %w", err)
	}
	schoolCat, err := ruleset.NewSchoolCatalog(schools)
	if err != nil {
		return nil, fmt.Errorf("loading spell schools: %w", err)
	}

	effects, err := condition.LoadDirectory(fsys, EffectsDir)
	if err != nil {
		return nil, fmt.Errorf("loading effects: %w", err)
	}

	b := &Bundle{Classes: classCat, Schools: schoolCat, Effects: effects}
	if err := b.checkReferences(); err != nil {
		return nil, err
	}
	return b, nil
}

// checkReferences verifies that class immunities name known effects and
// that effect immune class lists name known classes.
func (b *Bundle) checkReferences() error {
	var errs []error
	for id := range b.Classes.IDs() {
		cls, _ := b.Classes.Lookup(id)
		for _, effectID := range cls.Immunities {
			if _, err := b.Effects.Lookup(effectID); err != nil {
				errs = append(errs, fmt.Errorf("class %q immunities: %w", id, err))
			}
		}
	}
	for _, def := range b.Effects.All() {
		for _, classID := range def.ImmuneClasses {
			if _, err := b.Classes.Lookup(classID); err != nil {
				errs = append(errs, fmt.Errorf("effect %q immune_classes: %w", def.ID, err))
			}
		}
	}
	return errors.Join(errs...)
}
