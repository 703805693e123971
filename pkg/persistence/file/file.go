// Package file provides file-based persistence implementation for apps, cases and users.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/dukex/caseflow/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the file system.
type Persistence struct {
	root     string
	appRepo  *AppRepository
	caseRepo *CaseRepository
	userRepo *UserRepository
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
func NewPersistence(root string) persistence.Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:     cleanRoot,
		appRepo:  NewAppRepository(cleanRoot),
		caseRepo: NewCaseRepository(cleanRoot),
		userRepo: NewUserRepository(cleanRoot),
	}
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks if the file persistence layer is healthy by verifying the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) AppRepository() persistence.AppRepository {
	return fp.appRepo
}

func (fp *Persistence) CaseRepository() persistence.CaseRepository {
	return fp.caseRepo
}

func (fp *Persistence) UserRepository() persistence.UserRepository {
	return fp.userRepo
}
