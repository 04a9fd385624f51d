package importer

import (
	"context"
	"encoding/json/v2"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactdock/contactdock-server/internal/domain"
	"github.com/contactdock/contactdock-server/internal/dto"
	"github.com/contactdock/contactdock-server/internal/id"
	"github.com/contactdock/contactdock-server/internal/service"
	"github.com/contactdock/contactdock-server/internal/store"
)

func TestParseCSV(t *testing.T) {
	input := `name,email,phone,company,notes,tags
Ann Larsson,ann@x.com,555-0100,Acme,Met at conf,VIP|Leads
Bo Berg,bo@x.com,,,,
`
	rows, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Ann Larsson", rows[0].Name)
	assert.Equal(t, "ann@x.com", rows[0].Email)
	assert.Equal(t, "555-0100", rows[0].Phone)
	assert.Equal(t, "Acme", rows[0].Company)
	assert.Equal(t, "Met at conf", rows[0].Notes)
	assert.Equal(t, []string{"VIP", "Leads"}, rows[0].TagNames)

	assert.Equal(t, "Bo Berg", rows[1].Name)
	assert.Empty(t, rows[1].TagNames)
}

func TestParseCSV_ColumnOrderFree(t *testing.T) {
	input := "email,name\nann@x.com,Ann\n"
	rows, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Ann", rows[0].Name)
	assert.Equal(t, "ann@x.com", rows[0].Email)
}

func TestParseCSV_MissingRequiredColumn(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("name,phone\nAnn,555\n"))
	assert.ErrorContains(t, err, "email")
}

func newWatcherFixture(t *testing.T) (*Watcher, *store.Store, string) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dataPath := t.TempDir()

	s, err := store.New(filepath.Join(dataPath, "db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	imports := service.NewImportService(s, logger)
	w, err := New(dataPath, s, imports, logger)
	require.NoError(t, err)
	return w, s, dataPath
}

func seedUser(t *testing.T, s *store.Store, email string) *domain.User {
	t.Helper()
	u := &domain.User{Email: email, SubjectID: "auth0|" + email}
	u.ID = id.MustGenerate(id.PrefixUser)
	u.InitTimestamps()
	require.NoError(t, s.Users.Create(context.Background(), u.ID, u))
	return u
}

func dropFile(t *testing.T, root, ownerID, name, content string) string {
	t.Helper()
	dir := filepath.Join(root, "import", ownerID)
	require.NoError(t, os.MkdirAll(dir, 0o750))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o640))
	return path
}

func TestProcessFile_ImportsAndWritesResult(t *testing.T) {
	w, s, dataPath := newWatcherFixture(t)
	ctx := context.Background()
	user := seedUser(t, s, "owner@example.com")

	tag := &domain.Tag{OwnerID: user.ID, Name: "VIP", Color: "#ff0000"}
	tag.ID = id.MustGenerate(id.PrefixTag)
	tag.InitTimestamps()
	require.NoError(t, s.CreateTag(ctx, tag))

	path := dropFile(t, dataPath, user.ID, "contacts.csv",
		"name,email,tags\nAnn,ann@x.com,VIP\n,blank@x.com,\n")

	require.NoError(t, w.ProcessFile(ctx, path))

	// Source file replaced by a result report.
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	data, err := os.ReadFile(path + ".result.json")
	require.NoError(t, err)
	var result dto.ImportResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 1, result.FailedCount)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 2, result.Errors[0].RowIndex)

	// The imported contact carries the resolved tag.
	c, err := s.GetContactByEmail(ctx, user.ID, "ann@x.com")
	require.NoError(t, err)
	assert.Equal(t, []string{tag.ID}, c.TagIDs)

	batches, err := s.ListImportBatches(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, domain.ImportSourceWatch, batches[0].Source)
}

func TestProcessFile_UnknownTagNameFailsRow(t *testing.T) {
	w, s, dataPath := newWatcherFixture(t)
	ctx := context.Background()
	user := seedUser(t, s, "owner@example.com")

	path := dropFile(t, dataPath, user.ID, "contacts.csv",
		"name,email,tags\nAnn,ann@x.com,Nope\n")

	require.NoError(t, w.ProcessFile(ctx, path))

	data, err := os.ReadFile(path + ".result.json")
	require.NoError(t, err)
	var result dto.ImportResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, 0, result.SuccessCount)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Error, "Nope")
}

func TestProcessFile_UnknownOwnerSkipped(t *testing.T) {
	w, s, dataPath := newWatcherFixture(t)
	ctx := context.Background()

	path := dropFile(t, dataPath, "usr-stranger", "contacts.csv",
		"name,email\nAnn,ann@x.com\n")

	require.NoError(t, w.ProcessFile(ctx, path))

	// Nothing imported, file left in place for inspection.
	_, err := os.Stat(path)
	assert.NoError(t, err)

	batches, err := s.ListImportBatches(ctx, "usr-stranger")
	require.NoError(t, err)
	assert.Empty(t, batches)
}
