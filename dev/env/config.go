package devenv

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LiveCredentials are the portal credentials used by tests that hit the
// real portal, they are read from SRM_EMAIL and SRM_PASSWORD.
type LiveCredentials struct {
	Email    string
	Password string
}

// GetLiveCredentials returns ok = false when either variable is unset, a
// .env file at the workspace root is loaded first without overriding the
// environment.
func GetLiveCredentials() (LiveCredentials, bool) {
	root, err := GetWorkspaceRoot()
	if err == nil {
		godotenv.Load(filepath.Join(root, ".env"))
	}

	creds := LiveCredentials{
		Email:    os.Getenv("SRM_EMAIL"),
		Password: os.Getenv("SRM_PASSWORD"),
	}
	return creds, creds.Email != "" && creds.Password != ""
}
