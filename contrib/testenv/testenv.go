// Package testenv provides utilities for testing the CMIS Go client against
// a sample repository.
//
// By default the repository is served in-process by a fake AtomPub server.
// Setting EnvAtomPubURL runs the same code against a real server instead; it
// must hold the sample tree described in Seed.
package testenv

import (
	"context"
	"fmt"
	"os"

	cmis "github.com/cmisgo/cmis.go"
	"github.com/cmisgo/cmis.go/internal/fakecmis"
)

const (
	// EnvAtomPubURL is the environment variable that specifies the service
	// document URL of a real server.
	EnvAtomPubURL = "CMIS_TEST_ATOMPUB_URL"

	// EnvRepositoryID selects the repository of a real server. If not set,
	// the first repository is used.
	EnvRepositoryID = "CMIS_TEST_REPOSITORY_ID"

	// EnvUser and EnvPassword are the credentials for a real server.
	EnvUser     = "CMIS_TEST_USER"
	EnvPassword = "CMIS_TEST_PASSWORD"

	// DefaultRepositoryID is the id of the in-process repository.
	DefaultRepositoryID = "sample"
)

// Env is a session with a discovered repository.
type Env struct {
	Session      *cmis.Session
	RepositoryID string

	// Server is nil when testing against a real server.
	Server *fakecmis.Server
}

// Seed fills a fake server with the sample tree:
//
//	/Sites/report.txt
//	/Sites/notes.md
//	/Archive
func Seed(server *fakecmis.Server) {
	server.AddFolder("sites", "Sites", "")
	server.AddFolder("archive", "Archive", "")
	server.AddDocument("report", "report.txt", "sites", "text/plain", []byte("quarterly numbers"))
	server.AddDocument("notes", "notes.md", "sites", "text/markdown", []byte("# notes"))
}

// New creates an Env. The connection information is derived from
// environment variables.
func New(ctx context.Context) (*Env, error) {
	env := &Env{}
	params := cmis.Parameters{}
	var opts []cmis.Option

	if url := os.Getenv(EnvAtomPubURL); url != "" {
		params[cmis.ParamAtomPubURL] = url
		params[cmis.ParamUser] = os.Getenv(EnvUser)
		params[cmis.ParamPassword] = os.Getenv(EnvPassword)
		env.RepositoryID = os.Getenv(EnvRepositoryID)
	} else {
		env.Server = fakecmis.NewServer(DefaultRepositoryID)
		Seed(env.Server)
		env.Server.Start()
		params[cmis.ParamAtomPubURL] = env.Server.URL()
		opts = append(opts, cmis.WithHTTPClient(env.Server.Client()))
	}

	session, err := cmis.NewSession(params, opts...)
	if err != nil {
		env.Close()
		return nil, err
	}
	env.Session = session

	infos, err := session.GetRepositoryInfos(ctx)
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("failed to discover repositories: %w", err)
	}
	if env.RepositoryID == "" {
		if len(infos) == 0 {
			env.Close()
			return nil, fmt.Errorf("the server has no repository")
		}
		env.RepositoryID = infos[0].ID
	}
	return env, nil
}

// MustNew is New that panics on error.
func MustNew() *Env {
	env, err := New(context.Background())
	if err != nil {
		panic(fmt.Sprintf("Failed to create CMIS test environment: %v", err))
	}
	return env
}

// Close ends the session and stops the in-process server.
func (e *Env) Close() {
	if e.Session != nil {
		_ = e.Session.Close()
	}
	if e.Server != nil {
		e.Server.Close()
	}
}
