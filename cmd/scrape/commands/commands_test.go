package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/attendance-service/internal/entity"
	"github.com/user/attendance-service/internal/usecase"
)

const savedPage = `<html><body>
<table>
<tr><th>Days</th><th>ITITC601</th><th>CSE301</th></tr>
<tr><td>Overall (%)</td><td>88.89</td><td>60</td></tr>
<tr><td>Overall Class</td><td>45</td><td>50</td></tr>
<tr><td>Overall Present</td><td>40</td><td>30</td></tr>
<tr><td>Overall Absent</td><td>5</td><td>20</td></tr>
</table>
<div>ITITC601-Web Technology<br>CSE301-Data Structures<br></div>
</body></html>`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestParseCommand(t *testing.T) {
	chdir(t, t.TempDir())
	require.NoError(t, os.WriteFile("attendance_data.html", []byte(savedPage), 0o644))
	outDir := filepath.Join(t.TempDir(), "exports")

	out, err := run(t, "parse", "attendance_data.html", "--out", outDir, "--format", "csv,json")
	require.NoError(t, err)

	assert.Contains(t, out, "attendance_data.html: 2 records")
	assert.Contains(t, out, "Web Technology")
	assert.Contains(t, out, "Data Structures")
	assert.Contains(t, out, "1 subject(s) below 75.00%")
	assert.Contains(t, out, "CSE301 Data Structures (60.00%)")

	csv, err := os.ReadFile(filepath.Join(outDir, "attendance_data.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(csv), "ITITC601,Web Technology,40,5,45,88.89")
	assert.FileExists(t, filepath.Join(outDir, "attendance_data.json"))
}

func TestParseCommandMergesFiles(t *testing.T) {
	chdir(t, t.TempDir())
	require.NoError(t, os.WriteFile("a.html", []byte(savedPage), 0o644))
	require.NoError(t, os.WriteFile("b.html", []byte(savedPage), 0o644))

	out, err := run(t, "parse", "a.html", "b.html")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "Web Technology"))
}

func TestParseCommandErrors(t *testing.T) {
	chdir(t, t.TempDir())
	require.NoError(t, os.WriteFile("empty.html", []byte("<html><body><p>Logged out</p></body></html>"), 0o644))

	_, err := run(t, "parse", "empty.html")
	assert.ErrorContains(t, err, "no attendance table found")

	_, err = run(t, "parse", "empty.html", "--format", "pdf")
	assert.ErrorContains(t, err, "unknown export format")

	_, err = run(t, "parse", "missing.html")
	assert.Error(t, err)

	_, err = run(t, "parse")
	assert.Error(t, err)
}

func TestFetchRequiresCredentials(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv(envRollNo, "")
	t.Setenv(envPassword, "")

	_, err := run(t, "fetch")
	assert.ErrorContains(t, err, "IMS_ROLL_NO and IMS_PASSWORD must be set")

	_, err = run(t, "fetch", "--year", "-1")
	assert.ErrorContains(t, err, "must not be negative")
}

func TestTerminal(t *testing.T) {
	dir := t.TempDir()
	captchaPath := filepath.Join(dir, "captcha.png")
	var out bytes.Buffer
	term := newTerminal(strings.NewReader(" ab12 \n\nlast"), &out, captchaPath)
	ctx := context.Background()

	text, err := term.SolveCaptcha(ctx, []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, "ab12", text)
	assert.FileExists(t, captchaPath)
	assert.Contains(t, out.String(), "CAPTCHA image saved to "+captchaPath)

	require.NoError(t, term.AwaitManualStep(ctx, "Click 'My Activities'"))
	assert.Contains(t, out.String(), "Manual step needed: Click 'My Activities'")

	text, err = term.SolveCaptcha(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "last", text, "a final line without newline still counts")

	_, err = term.SolveCaptcha(ctx, nil)
	assert.Error(t, err, "input exhausted")
}

func TestTerminalHonoursContext(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	term := newTerminal(r, &bytes.Buffer{}, "")
	assert.ErrorIs(t, term.AwaitManualStep(ctx, "wait"), context.Canceled)
}

func TestRenderRecords(t *testing.T) {
	records := []entity.AttendanceRecord{
		{SubjectCode: "CSE301", SubjectName: "Data Structures", ClassesPresent: 46, ClassesAbsent: 4, TotalClasses: 50, AttendancePercentage: 92},
		{SubjectCode: "MAC102", SubjectName: "N/A", ClassesPresent: 10, ClassesAbsent: 10, TotalClasses: 20, AttendancePercentage: 50},
	}
	var out bytes.Buffer
	renderRecords(&out, records, usecase.Summarize(records, 75))

	s := out.String()
	assert.Contains(t, s, "CSE301")
	assert.Contains(t, s, "92.00%")
	assert.Contains(t, s, "80.00%")
	assert.Contains(t, strings.ToUpper(s), "2 SUBJECTS")
	assert.Contains(t, s, "MAC102 N/A (50.00%)")
	assert.NotContains(t, s, "CSE301 Data Structures (")
}

// chdir changes the working directory for the duration of the test,
// equivalent to testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}
