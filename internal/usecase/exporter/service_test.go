package exporter

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RickieES/localizethat-sub000/internal/adapters/codec/properties"
	"github.com/RickieES/localizethat-sub000/internal/adapters/codec/registry"
	"github.com/RickieES/localizethat-sub000/internal/adapters/codec/textfile"
	"github.com/RickieES/localizethat-sub000/internal/adapters/db/sqlite"
	"github.com/RickieES/localizethat-sub000/internal/domain"
	"github.com/RickieES/localizethat-sub000/internal/usecase/runs"
)

type testEnv struct {
	session  *sqlite.Session
	svc      *Service
	root     *domain.LocaleContainer
	twinRoot *domain.LocaleContainer
	twinFile *domain.LocaleFile
	path     *domain.LocalePath
	twinDir  string
}

// newTestEnv seeds a default en-US tree and a translated es-ES twin tree,
// both persisted: m.properties with greeting "Hello" / "Hola".
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	base := t.TempDir()
	db, err := sqlite.Init(filepath.Join(base, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	session := sqlite.NewSession(db)
	reg := registry.New()
	reg.Register(properties.New(domain.FileKeyValue))
	reg.Register(properties.New(domain.FileIniSection))
	reg.Register(textfile.New())

	ctx := context.Background()
	root := domain.NewLocaleContainer("en-US", "en-US")
	twinRoot := domain.NewLocaleContainer("es-ES", "es-ES")
	require.NoError(t, twinRoot.SetDefaultTwin(root))
	f := domain.NewLocaleFile("m.properties", "en-US", domain.FileKeyValue)
	root.AddFile(f)
	greeting := domain.NewLocaleContent("greeting", "en-US", domain.ContentKeyValue)
	greeting.TextValue = "Hello"
	f.AddContent(greeting)
	twinFile := domain.NewLocaleFile("m.properties", "es-ES", domain.FileKeyValue)
	require.NoError(t, twinFile.SetDefaultTwin(f))
	twinRoot.AddFile(twinFile)
	greetingT := domain.NewLocaleContent("greeting", "es-ES", domain.ContentKeyValue)
	greetingT.TextValue = "Hola"
	require.NoError(t, greetingT.SetDefaultTwin(greeting))
	twinFile.AddContent(greetingT)

	require.NoError(t, session.Begin(ctx))
	for _, n := range []domain.LocaleNode{root, twinRoot, f, greeting, twinFile, greetingT} {
		require.NoError(t, session.Persist(ctx, n))
	}
	require.NoError(t, session.Commit())

	defDir := filepath.Join(base, "l10n", "en-US")
	twinDir := filepath.Join(base, "l10n", "es-ES")
	require.NoError(t, os.MkdirAll(defDir, 0o755))
	lpRepo := sqlite.NewLocalePathRepo(db)
	lp := &domain.LocalePath{Path: defDir, Locale: "en-US", Container: root}
	require.NoError(t, lpRepo.Create(ctx, lp))
	require.NoError(t, lpRepo.Create(ctx, &domain.LocalePath{Path: twinDir, Locale: "es-ES", Container: twinRoot}))

	return &testEnv{
		session:  session,
		svc:      New(session, reg, runs.WriterSink{W: io.Discard}),
		root:     root,
		twinRoot: twinRoot,
		twinFile: twinFile,
		path:     lp,
		twinDir:  twinDir,
	}
}

func TestExportWritesTwinTree(t *testing.T) {
	e := newTestEnv(t)

	res, err := e.svc.Run(context.Background(), "es-ES", false, []*domain.LocalePath{e.path})
	require.NoError(t, err)
	assert.Equal(t, 1, res.PathsDone)
	assert.Equal(t, 1, res.FilesAdded)
	assert.Zero(t, res.FilesModified)

	data, err := os.ReadFile(filepath.Join(e.twinDir, "m.properties"))
	require.NoError(t, err)
	assert.Equal(t, "greeting=Hola\n", string(data))
}

func TestExportCountsModifiedFiles(t *testing.T) {
	e := newTestEnv(t)
	require.NoError(t, os.MkdirAll(e.twinDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(e.twinDir, "m.properties"), []byte("stale\n"), 0o644))

	res, err := e.svc.Run(context.Background(), "es-ES", false, []*domain.LocalePath{e.path})
	require.NoError(t, err)
	assert.Zero(t, res.FilesAdded)
	assert.Equal(t, 1, res.FilesModified)

	data, err := os.ReadFile(filepath.Join(e.twinDir, "m.properties"))
	require.NoError(t, err)
	assert.Equal(t, "greeting=Hola\n", string(data))
}

func TestExportRemovesObsoleteEntries(t *testing.T) {
	e := newTestEnv(t)
	require.NoError(t, os.MkdirAll(filepath.Join(e.twinDir, "stale-dir"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(e.twinDir, "stale.properties"), []byte("old=1\n"), 0o644))

	// Without the flag the strays survive.
	_, err := e.svc.Run(context.Background(), "es-ES", false, []*domain.LocalePath{e.path})
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(e.twinDir, "stale.properties"))
	require.NoError(t, err)

	res, err := e.svc.Run(context.Background(), "es-ES", true, []*domain.LocalePath{e.path})
	require.NoError(t, err)
	assert.Equal(t, 1, res.FilesDeleted)
	assert.Equal(t, 1, res.FoldersDeleted)

	_, err = os.Stat(filepath.Join(e.twinDir, "stale.properties"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(e.twinDir, "stale-dir"))
	assert.True(t, os.IsNotExist(err))
	// The exported file itself is untouched by the pruning.
	_, err = os.Stat(filepath.Join(e.twinDir, "m.properties"))
	require.NoError(t, err)
}

func TestExportKeepOriginalEmitsDefaultText(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	ct := e.twinFile.ContentByName("greeting")
	ct.KeepOriginal = true
	require.NoError(t, e.session.Begin(ctx))
	require.NoError(t, e.session.Merge(ctx, ct))
	require.NoError(t, e.session.Commit())

	_, err := e.svc.Run(ctx, "es-ES", false, []*domain.LocalePath{e.path})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(e.twinDir, "m.properties"))
	require.NoError(t, err)
	assert.Equal(t, "greeting=Hello\n", string(data))
}

func TestExportSkipsDontExportFiles(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.twinFile.DontExport = true
	require.NoError(t, e.session.Begin(ctx))
	require.NoError(t, e.session.Merge(ctx, e.twinFile))
	require.NoError(t, e.session.Commit())

	res, err := e.svc.Run(ctx, "es-ES", false, []*domain.LocalePath{e.path})
	require.NoError(t, err)
	assert.Zero(t, res.FilesAdded)
	_, err = os.Stat(filepath.Join(e.twinDir, "m.properties"))
	assert.True(t, os.IsNotExist(err))
}

func TestExportSkipsPathWithoutTwin(t *testing.T) {
	e := newTestEnv(t)
	res, err := e.svc.Run(context.Background(), "fr-FR", false, []*domain.LocalePath{e.path})
	require.NoError(t, err)
	assert.Zero(t, res.PathsDone)
	assert.Equal(t, 1, res.PathsSkipped)
}

// addBinaryTwin tracks logo.png in both trees and returns the bytes written
// to the default locale's disk copy.
func (e *testEnv) addBinaryTwin(t *testing.T) []byte {
	t.Helper()
	ctx := context.Background()
	img := domain.NewLocaleFile("logo.png", "en-US", domain.FileBinary)
	e.root.AddFile(img)
	imgT := domain.NewLocaleFile("logo.png", "es-ES", domain.FileBinary)
	require.NoError(t, imgT.SetDefaultTwin(img))
	e.twinRoot.AddFile(imgT)
	require.NoError(t, e.session.Begin(ctx))
	require.NoError(t, e.session.Persist(ctx, img))
	require.NoError(t, e.session.Persist(ctx, imgT))
	require.NoError(t, e.session.Commit())

	payload := []byte{0x89, 'P', 'N', 'G', 0x00, 0x01, 0x02}
	require.NoError(t, os.WriteFile(filepath.Join(e.path.Path, "logo.png"), payload, 0o644))
	return payload
}

func TestExportCopiesBinaryVerbatim(t *testing.T) {
	e := newTestEnv(t)
	payload := e.addBinaryTwin(t)

	res, err := e.svc.Run(context.Background(), "es-ES", false, []*domain.LocalePath{e.path})
	require.NoError(t, err)
	// The properties file plus the copied binary.
	assert.Equal(t, 2, res.FilesAdded)

	data, err := os.ReadFile(filepath.Join(e.twinDir, "logo.png"))
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestExportSkipsBinaryMissingFromMasterDisk(t *testing.T) {
	e := newTestEnv(t)
	_ = e.addBinaryTwin(t)
	require.NoError(t, os.Remove(filepath.Join(e.path.Path, "logo.png")))

	res, err := e.svc.Run(context.Background(), "es-ES", false, []*domain.LocalePath{e.path})
	require.NoError(t, err)
	// The missing source is a diagnostic, not a failure; the rest exports.
	assert.Equal(t, 1, res.FilesAdded)
	_, err = os.Stat(filepath.Join(e.twinDir, "logo.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestExportHonorsCancellation(t *testing.T) {
	e := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := e.svc.Run(ctx, "es-ES", false, []*domain.LocalePath{e.path})
	require.NoError(t, err)
	assert.True(t, res.Canceled)
	_, statErr := os.Stat(filepath.Join(e.twinDir, "m.properties"))
	assert.True(t, os.IsNotExist(statErr))
}
