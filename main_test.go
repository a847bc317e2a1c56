package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/donutnomad/partialgen/internal/config"
	"github.com/donutnomad/partialgen/internal/report"
	"github.com/donutnomad/partialgen/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const carModel = `package cars

// Car
// @Partial(omit(vin), optional(mileage))
type Car struct {
	vin     string
	model   string
	mileage *int
}
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	a := &app{v: config.New(t.TempDir()), registry: plugin.Global()}
	cmd := newRootCommand(a)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := newRootCommand(&app{v: config.New(t.TempDir()), registry: plugin.Global()})

	names := make([]string, 0)
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Subset(t, names, []string{"gen", "check", "dev"})
	assert.Contains(t, cmd.Long, "@Partial")
	assert.NotNil(t, cmd.PersistentFlags().Lookup("no-output"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("workers"))
}

func TestRunOptions(t *testing.T) {
	a := &app{
		registry: plugin.Global(),
		cfg:      &config.Config{Output: "out.go", Async: true, Workers: 3},
	}
	opts := a.runOptions([]string{"./models"})
	assert.Equal(t, 3, opts.Workers)
	assert.Equal(t, "out.go", opts.Output)
	assert.True(t, opts.Async)
	assert.Equal(t, []string{"./models"}, opts.Patterns)
}

func TestGenAndCheck(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "car.go"), []byte(carModel), 0o644))

	// 尚未生成，check 失败并列出过期文件
	out, err := execute(t, "--format", "json", "check", dir)
	assert.ErrorIs(t, err, errReported)
	var summary report.Summary
	require.NoError(t, sonic.ConfigStd.Unmarshal([]byte(out), &summary))
	assert.False(t, summary.OK)
	assert.Equal(t, []string{filepath.Join(dir, "car_partial.go")}, summary.Stale)

	_, err = execute(t, "--no-color", "--workers", "2", dir)
	require.NoError(t, err)
	content, err := os.ReadFile(filepath.Join(dir, "car_partial.go"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "func (p PartialCar) ToCar(")

	out, err = execute(t, "--no-color", "check", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "均为最新")
}

func TestGenReportsDiagnostics(t *testing.T) {
	dir := t.TempDir()
	broken := "package cars\n\n// @Partial(omit(vin), optional(vin))\ntype Car struct {\n\tvin string\n}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "car.go"), []byte(broken), 0o644))

	out, err := execute(t, "--no-color", "gen", dir)
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, out, "car.go:3:33: PG003 ConflictError")
	assert.Contains(t, out, "字段 vin 同时出现在 omit 和 optional 中 (@Partial #1)")
}

func TestCollectWatchDirs(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"a/b", ".git", "testdata", "_skip", "vendor/x"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
	}

	dirs, err := collectWatchDirs([]string{root + "/..."})
	require.NoError(t, err)
	assert.Equal(t, []string{root, filepath.Join(root, "a"), filepath.Join(root, "a", "b")}, dirs)

	dirs, err = collectWatchDirs([]string{filepath.Join(root, "a"), filepath.Join(root, "a")})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "a")}, dirs)

	_, err = collectWatchDirs([]string{filepath.Join(root, "missing")})
	assert.Error(t, err)
}

func TestIsGeneratedFile(t *testing.T) {
	dir := t.TempDir()
	generated := filepath.Join(dir, "car_partial.go")
	source := filepath.Join(dir, "car.go")
	require.NoError(t, os.WriteFile(generated, []byte("// "+plugin.GeneratedHeader+"\n\npackage cars\n"), 0o644))
	require.NoError(t, os.WriteFile(source, []byte(carModel), 0o644))

	assert.True(t, isGeneratedFile(generated))
	assert.False(t, isGeneratedFile(source))
}

// newTestRunner 只记录生成调用的 devRunner
func newTestRunner(debounce time.Duration) (*devRunner, func() []string) {
	var mu sync.Mutex
	var calls []string
	r := &devRunner{
		debounce:    debounce,
		ctx:         context.Background(),
		pendingDirs: make(map[string]*time.Timer),
	}
	r.generate = func(pkgDir string) {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, pkgDir)
	}
	return r, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), calls...)
	}
}

func TestScheduleGenerate_Debounce(t *testing.T) {
	r, calls := newTestRunner(20 * time.Millisecond)
	for i := 0; i < 3; i++ {
		r.scheduleGenerate("/src/models")
	}
	r.scheduleGenerate("/src/cars")

	r.wg.Wait()
	assert.ElementsMatch(t, []string{"/src/models", "/src/cars"}, calls())
	assert.Empty(t, r.pendingDirs)
}

func TestScheduleGenerate_ExpiredTimerKeepsNewer(t *testing.T) {
	r, calls := newTestRunner(time.Hour)
	const dir = "/src/models"

	r.scheduleGenerate(dir)
	first := r.pendingDirs[dir]
	r.scheduleGenerate(dir)
	second := r.pendingDirs[dir]
	require.NotSame(t, first, second)

	// 旧定时器在新定时器登记之后才执行回调
	r.wg.Add(1)
	r.fire(dir, first)
	assert.Same(t, second, r.pendingDirs[dir])
	assert.Equal(t, []string{dir}, calls())

	// 新定时器仍可被停止
	r.stop()
	assert.Empty(t, r.pendingDirs)
	assert.Equal(t, []string{dir}, calls())
}

func TestScheduleGenerate_Cancelled(t *testing.T) {
	r, calls := newTestRunner(time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.ctx = ctx

	r.scheduleGenerate("/src/models")
	r.wg.Wait()
	assert.Empty(t, calls())
}
