package cli

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/strapisync/internal/core/domain"
)

func stubPassword(t *testing.T, password string) {
	t.Helper()
	old := passwordReader
	passwordReader = func(io.Reader) (string, error) { return password, nil }
	t.Cleanup(func() { passwordReader = old })
}

func TestAuthLogin_Success(t *testing.T) {
	stubPassword(t, "hunter2")
	sources := &mockSourceService{
		source: &domain.Source{Name: "blog", Login: &domain.Login{Identifier: "editor@example.com"}},
		ok:     true,
	}
	setupApp(t, &App{Sources: sources})

	out, err := execute(t, "auth", "login", "blog")

	require.NoError(t, err)
	assert.Contains(t, out, "Password for editor@example.com")
	assert.Contains(t, out, "Logged in to blog")
	require.NotNil(t, sources.lastLogin)
	assert.Equal(t, "hunter2", sources.lastLogin.Password)
}

func TestAuthLogin_IdentifierFlag(t *testing.T) {
	stubPassword(t, "pw")
	sources := &mockSourceService{source: &domain.Source{Name: "blog"}, ok: true}
	setupApp(t, &App{Sources: sources})

	_, err := execute(t, "auth", "login", "blog", "--identifier", "admin")

	require.NoError(t, err)
	assert.Equal(t, "admin", sources.lastLogin.Identifier)
}

func TestAuthLogin_Invalid(t *testing.T) {
	stubPassword(t, "wrong")
	sources := &mockSourceService{
		source: &domain.Source{Name: "blog", Login: &domain.Login{Identifier: "editor"}},
		err:    domain.ErrAuthInvalid,
	}
	setupApp(t, &App{Sources: sources})

	out, err := execute(t, "auth", "login", "blog")

	assert.ErrorIs(t, err, domain.ErrAuthInvalid)
	assert.Contains(t, out, "Invalid identifier or password.")
}

func TestAuthLogin_NoIdentifier(t *testing.T) {
	stubPassword(t, "pw")
	setupApp(t, &App{Sources: &mockSourceService{source: &domain.Source{Name: "blog"}}})

	_, err := execute(t, "auth", "login", "blog")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no identifier")
}

func TestAuthLogin_UnknownSource(t *testing.T) {
	setupApp(t, &App{Sources: &mockSourceService{}})

	_, err := execute(t, "auth", "login", "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReadPassword_NonTerminal(t *testing.T) {
	pw, err := readPassword(strings.NewReader("secret\r\nignored"))
	require.NoError(t, err)
	assert.Equal(t, "secret", pw)

	pw, err = readPassword(strings.NewReader("no-newline"))
	require.NoError(t, err)
	assert.Equal(t, "no-newline", pw)
}
