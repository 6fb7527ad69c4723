package cli

import (
	"bytes"
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/nicocardiel/repdoc/internal/catalog"
	"github.com/nicocardiel/repdoc/internal/config"
	"github.com/nicocardiel/repdoc/internal/domain"
	"github.com/nicocardiel/repdoc/internal/report"
	"github.com/nicocardiel/repdoc/internal/repository"
	"github.com/nicocardiel/repdoc/internal/service"
	"github.com/nicocardiel/repdoc/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const course = testutil.TestCourse

// testEnv is shared by the commands of one test: the database and output
// directory outlive each App, as they do between real runs.
type testEnv struct {
	database *sql.DB
	dir      string
	config   string
	workbook string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	return &testEnv{
		database: testutil.NewTestDB(t),
		dir:      dir,
		config:   filepath.Join(dir, "repdoc.yaml"),
		workbook: testutil.WriteWorkbook(t, testutil.DefaultWorkbookSpec()),
	}
}

func (e *testEnv) wire(cfg *config.Config, logger *slog.Logger) (*Services, error) {
	gen, err := report.NewGenerator(report.Options{
		OutputDir: cfg.OutputDir,
		Title:     cfg.Report.Title,
		Version:   "test",
	})
	if err != nil {
		return nil, err
	}
	execs := repository.NewSQLiteExecutionRepo(e.database)
	sessions := service.NewSessionService(
		repository.NewSQLiteLedgerRepo(e.database),
		execs,
		testutil.NewTestUoW(e.database),
		service.NewPublisher(gen, execs, nil, logger),
		service.SessionOptions{
			OutputDir:            cfg.OutputDir,
			BlockedCourses:       cfg.Courses.Blocked,
			WarningCollaborators: cfg.WarningCollaborators,
			Version:              "test",
			Now:                  func() time.Time { return testutil.FixedTime },
		},
		service.NewLogUseCaseObserver(logger),
	)
	return &Services{Sessions: sessions}, nil
}

func (e *testEnv) app(stdin string) *App {
	return &App{
		Version:  "test",
		Wire:     e.wire,
		Hostname: func() (string, error) { return "guaix", nil },
		Args:     []string{"repdoc", "test"},
		Stdin:    strings.NewReader(stdin),
	}
}

// executeCmd runs a cobra command against app and captures stdout.
func executeCmd(t *testing.T, app *App, env *testEnv, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(new(bytes.Buffer))
	root.SetArgs(append([]string{"--config", env.config, "--output", env.dir}, args...))
	err := root.Execute()
	require.NoError(t, app.Close())
	return out.String(), err
}

func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeCmd(t, e.app(""), e, args...)
}

func (e *testEnv) storedLedger(t *testing.T) []*domain.LedgerEntry {
	t.Helper()
	entries, err := repository.NewSQLiteLedgerRepo(e.database).List(context.Background(), course)
	require.NoError(t, err)
	return entries
}

func TestVersionCmd(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "repdoc test\n", out)
}

func TestEchoPrintsCommandLine(t *testing.T) {
	env := newTestEnv(t)
	app := env.app("")
	app.Args = []string{"repdoc", "--echo", "version"}
	out, err := executeCmd(t, app, env, "--echo", "version")
	require.NoError(t, err)
	assert.Equal(t, "repdoc --echo version\nrepdoc test\n", out)
}

func TestCoursesCmd(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.run(t, "courses")
	require.NoError(t, err)
	assert.Regexp(t, `2024-2025\s+bloqueado`, out)
	assert.Regexp(t, course+`\s+abierto`, out)
}

func TestInvalidConfigRejected(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.WriteFile(env.config, []byte("log:\n  level: chatty\n"), 0644))
	_, err := env.run(t, "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.level")
}

func TestSelectCmd_WholeSubject(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.run(t, "select", env.workbook, "--course", course,
		"--applicant", "prof-ana", "--subject", "asig-opt", "--whole", "--round", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Ana Ruiz elige 3.0000 créditos de Óptica")

	stored := env.storedLedger(t)
	require.Len(t, stored, 1)
	assert.Contains(t, out, stored[0].ID)
	assert.FileExists(t, filepath.Join(env.dir, report.FileDegrees))
	assert.FileExists(t, filepath.Join(env.dir, report.FileLedger))
}

func TestSelectCmd_PartialCreditsWithComma(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.run(t, "select", env.workbook, "--course", course,
		"--applicant", "prof-ana", "--subject", "asig-mec", "--credits", "1,5")
	require.NoError(t, err)
	assert.Contains(t, out, "1.5000")
	assert.Equal(t, 1.5, env.storedLedger(t)[0].Credits)
}

func TestSelectCmd_FlagValidation(t *testing.T) {
	env := newTestEnv(t)
	base := []string{"select", env.workbook, "--course", course, "--applicant", "prof-ana", "--subject", "asig-mec"}

	_, err := env.run(t, base...)
	assert.ErrorContains(t, err, "either --whole or --credits")

	_, err = env.run(t, append(base, "--whole", "--credits", "2")...)
	assert.ErrorContains(t, err, "mutually exclusive")

	_, err = env.run(t, append(base, "--credits", "seis")...)
	assert.ErrorContains(t, err, "--credits")

	assert.Empty(t, env.storedLedger(t))
}

func TestSelectCmd_CreditsMustLeaveSomething(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "select", env.workbook, "--course", course,
		"--applicant", "prof-ana", "--subject", "asig-mec", "--credits", "6")
	assert.ErrorIs(t, err, domain.ErrInvalidCredits)
}

func TestSelectCmd_BlockedCourse(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "select", env.workbook, "--course", "2024-2025",
		"--applicant", "prof-ana", "--subject", "asig-mec", "--whole")
	assert.ErrorIs(t, err, domain.ErrCourseBlocked)
}

func TestRemoveCmd_AsksForConfirmation(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "select", env.workbook, "--course", course,
		"--applicant", "prof-ana", "--subject", "asig-opt", "--whole")
	require.NoError(t, err)
	id := env.storedLedger(t)[0].ID

	out, err := executeCmd(t, env.app("n\n"), env, "remove", env.workbook, "--course", course, "--entry", id)
	require.NoError(t, err)
	assert.Contains(t, out, "¿Seguro que quiere eliminar esta selección?")
	assert.Contains(t, out, "Cancelado.")
	assert.False(t, env.storedLedger(t)[0].IsRemoved())

	out, err = executeCmd(t, env.app("s\n"), env, "remove", env.workbook, "--course", course, "--entry", id, "--round", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "devuelve 3.0000 créditos de Óptica")

	removed := env.storedLedger(t)[0]
	require.True(t, removed.IsRemoved())
	assert.Equal(t, 2, *removed.RoundRemoved)
}

func TestRemoveCmd_YesSkipsPrompt(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "select", env.workbook, "--course", course,
		"--applicant", "prof-ana", "--subject", "asig-opt", "--whole")
	require.NoError(t, err)

	out, err := env.run(t, "remove", env.workbook, "--course", course, "--entry", env.storedLedger(t)[0].ID, "-y")
	require.NoError(t, err)
	assert.NotContains(t, out, "¿Seguro")
	assert.True(t, env.storedLedger(t)[0].IsRemoved())
}

func TestFinishCmd_Toggles(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.run(t, "finish", env.workbook, "--course", course, "--applicant", "prof-ana")
	require.NoError(t, err)
	assert.Contains(t, out, string(domain.ExplanationFinished))

	out, err = env.run(t, "finish", env.workbook, "--course", course, "--applicant", "prof-ana")
	require.NoError(t, err)
	assert.Contains(t, out, string(domain.ExplanationReactivated))
	assert.Len(t, env.storedLedger(t), 2)
}

func TestExportCmd_RegeneratesReports(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "select", env.workbook, "--course", course,
		"--applicant", "prof-ana", "--subject", "asig-mec", "--whole")
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(env.dir, report.FileResult)))

	out, err := env.run(t, "export", env.workbook, "--course", course)
	require.NoError(t, err)
	assert.Contains(t, out, "1 entradas (1 vigentes)")
	assert.Contains(t, out, "6.0000 créditos elegidos de 22.5000")
	assert.FileExists(t, filepath.Join(env.dir, report.FileResult))
	assert.FileExists(t, filepath.Join(env.dir, report.FileExecutions))
}

func TestExportCmd_FirstExportDoesNotBlockLaterChanges(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "export", env.workbook, "--course", course)
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(env.dir, catalog.DefaultLedgerFile))

	out, err := env.run(t, "select", env.workbook, "--course", course,
		"--applicant", "prof-ana", "--subject", "asig-opt", "--whole")
	require.NoError(t, err)
	assert.Contains(t, out, "Ana Ruiz elige 3.0000 créditos de Óptica")
	assert.Len(t, env.storedLedger(t), 1)
}

func TestExportCmd_BlockedCourseIsReadOnly(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "select", env.workbook, "--course", course,
		"--applicant", "prof-ana", "--subject", "asig-mec", "--whole")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(env.config, []byte("courses:\n  blocked: [\""+course+"\"]\n"), 0644))

	_, err = env.run(t, "export", env.workbook, "--course", course)
	require.NoError(t, err)

	_, err = env.run(t, "finish", env.workbook, "--course", course, "--applicant", "prof-ana")
	assert.ErrorIs(t, err, domain.ErrCourseBlocked)

	out, err := env.run(t, "history", "--course", course)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "guaix"), "read-only runs are not recorded")
}

func TestHistoryCmd(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.run(t, "history", "--course", course)
	require.NoError(t, err)
	assert.Contains(t, out, "No hay ejecuciones registradas.")

	_, err = env.run(t, "finish", env.workbook, "--course", course, "--applicant", "prof-ana")
	require.NoError(t, err)

	out, err = env.run(t, "history", "--course", course)
	require.NoError(t, err)
	assert.Contains(t, out, "guaix")
	assert.Contains(t, out, "repdoc test")
}

func TestConfigInit(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(env.dir, "nuevo.yaml")

	_, err := env.run(t, "config", "init", path)
	require.NoError(t, err)
	cfg, err := config.Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Sync.Target, cfg.Sync.Target)

	require.NoError(t, os.WriteFile(path, []byte("output_dir: otro\n"), 0644))
	out, err := executeCmd(t, env.app("n\n"), env, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelado.")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "output_dir: otro\n", string(data))

	_, err = env.run(t, "config", "init", path, "--force")
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEqual(t, "output_dir: otro\n", string(data))
}

func TestConfigShow_FlagOverridesFile(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.WriteFile(env.config, []byte("ui:\n  theme: dracula\n"), 0644))

	out, err := env.run(t, "config", "show")
	require.NoError(t, err)
	assert.Regexp(t, `ui\.theme\s+dracula`, out)
	assert.Regexp(t, `output_dir\s+`+regexp.QuoteMeta(env.dir), out)
}

func TestBoardCmd_NonInteractivePrintsTables(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.run(t, "board", env.workbook, "--course", course)
	require.NoError(t, err)
	assert.Contains(t, out, "Grado en Física")
	assert.Contains(t, out, "Astrofísica")
	assert.Contains(t, out, "Ana Ruiz")
}
