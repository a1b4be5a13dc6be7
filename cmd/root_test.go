/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package cmd

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/gopacket"
	"github.com/google/gopacket/pcapgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgconfig "jinr.ru/greenlab/go-usbmon/pkg/config"
	usblayers "jinr.ru/greenlab/go-usbmon/pkg/layers"
	"jinr.ru/greenlab/go-usbmon/pkg/stats"
)

var captureRecords = []string{
	"AKrN2gAAAABTAoACAQAAPMUvaFwAAAAAIsoBAI3///8oAAAAAAAAAIAGAAEAACgAAAAAAAAAAAAAAgAAAAAAAA==",
	"AKrN2gAAAABDAoACAQAtAMUvaFwAAAAAUdABAAAAAAASAAAAEgAAAAAAAAAAAAAAAAAAAAAAAAAAAgAAAAAAABIBAAIAAAAIbgX/AAABAQIAAQ==",
	"AKrN2gAAAABTAoABAQAAPMUvaFwAAAAAuNIBAI3///8oAAAAAAAAAIAGAAEAACgAAAAAAAAAAAAAAgAAAAAAAA==",
	"AKrN2gAAAABDAoABAQAtAMUvaFwAAAAAX9MBAAAAAAASAAAAEgAAAAAAAAAAAAAAAAAAAAAAAAAAAgAAAAAAABIBAAIJAAFAax0CABQEAwIBAQ==",
	"gLi22gAAAABDAYECAQAtAMgvaFwAAAAAskoEAAAAAAAIAAAACAAAAAAAAAAAAAAACAAAAAAAAAAEAgAAAAAAAAEgAAAAAAAA",
	"gLi22gAAAABTAYECAQAtPMgvaFwAAAAAS0sEAI3///8IAAAAAAAAAAAAAAAAAAAACAAAAAAAAAAEAgAAAAAAAA==",
	"gLi22gAAAABDAYECAQAtAMgvaFwAAAAAdUYGAAAAAAAIAAAACAAAAAAAAAAAAAAACAAAAAAAAAAEAgAAAAAAAAEAAAAAAAAA",
	"gLi22gAAAABTAYECAQAtPMgvaFwAAAAAC0cGAI3///8IAAAAAAAAAAAAAAAAAAAACAAAAAAAAAAEAgAAAAAAAA==",
	"gLi22gAAAABDAYECAQAtAMgvaFwAAAAAS9oKAAAAAAAIAAAACAAAAAAAAAAAAAAACAAAAAAAAAAEAgAAAAAAAAFAAAAAAAAA",
	"gLi22gAAAABTAYECAQAtPMgvaFwAAAAA5doKAI3///8IAAAAAAAAAAAAAAAAAAAACAAAAAAAAAAEAgAAAAAAAA==",
	"gLi22gAAAABDAYECAQAtAMgvaFwAAAAAI/0MAAAAAAAIAAAACAAAAAAAAAAAAAAACAAAAAAAAAAEAgAAAAAAAAEAAAAAAAAA",
	"gLi22gAAAABTAYECAQAtPMgvaFwAAAAAuf0MAI3///8IAAAAAAAAAAAAAAAAAAAACAAAAAAAAAAEAgAAAAAAAA==",
	"gLi22gAAAABDAYECAQAtAMkvaFwAAAAAitkBAAAAAAAIAAAACAAAAAAAAAAAAAAACAAAAAAAAAAEAgAAAAAAAAGAAAAAAAAA",
	"gLi22gAAAABTAYECAQAtPMkvaFwAAAAAJNoBAI3///8IAAAAAAAAAAAAAAAAAAAACAAAAAAAAAAEAgAAAAAAAA==",
	"gLi22gAAAABDAYECAQAtAMkvaFwAAAAAYfwDAAAAAAAIAAAACAAAAAAAAAAAAAAACAAAAAAAAAAEAgAAAAAAAAEAAAAAAAAA",
	"gLi22gAAAABTAYECAQAtPMkvaFwAAAAA9/wDAI3///8IAAAAAAAAAAAAAAAAAAAACAAAAAAAAAAEAgAAAAAAAA==",
}

// writeCapture stores the fixture records as a pcapng file
func writeCapture(t *testing.T, dir string) string {
	t.Helper()
	var buf bytes.Buffer
	w, err := pcapgo.NewNgWriter(&buf, usblayers.LinkTypeUsbLinuxMmapped)
	require.NoError(t, err)
	for i, r := range captureRecords {
		raw, err := base64.StdEncoding.DecodeString(r)
		require.NoError(t, err)
		ci := gopacket.CaptureInfo{
			Timestamp:     time.Unix(1550331845, int64(i)*1000),
			CaptureLength: len(raw),
			Length:        len(raw),
		}
		require.NoError(t, w.WritePacket(ci, raw))
	}
	require.NoError(t, w.Flush())

	path := filepath.Join(dir, "capture.pcapng")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

type env struct {
	dir        string
	configPath string
	capture    string
}

func newEnv(t *testing.T) *env {
	dir := t.TempDir()
	return &env{
		dir:        dir,
		configPath: filepath.Join(dir, "config"),
		capture:    writeCapture(t, dir),
	}
}

func (e *env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--" + ConfigOptionName, e.configPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func lines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

func TestTextCommand(t *testing.T) {
	e := newEnv(t)
	out, err := e.run(t, "text", e.capture)
	require.NoError(t, err)
	assert.Len(t, lines(out), 16)

	out, err = e.run(t, "text", "--retag=false", "--address-prefix", "1.2.1", e.capture)
	require.NoError(t, err)
	got := lines(out)
	require.Len(t, got, 12)
	assert.Equal(t, "dab6b880 1550331849261217 C Ii:1:002:1 0:8 8 = 01000000 00000000", got[10])
}

func TestStatsCommand(t *testing.T) {
	e := newEnv(t)
	out, err := e.run(t, "stats", "--output", "json", e.capture)
	require.NoError(t, err)
	var report stats.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 16, report.Packets)
	require.Len(t, report.Devices, 2)

	out, err = e.run(t, "stats", e.capture)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Identified descriptors:\n"))

	_, err = e.run(t, "stats", "--output", "yaml", e.capture)
	assert.Error(t, err)
}

func TestDescriptorsCommand(t *testing.T) {
	e := newEnv(t)
	out, err := e.run(t, "descriptors", "--output", "json", "--vendor-id", "1d6b", e.capture)
	require.NoError(t, err)
	assert.JSONEq(t, `["1.1"]`, out)

	out, err = e.run(t, "descriptors", "--output", "json", "--vendor-id", "056e", "--product-id", "0001", e.capture)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, out)

	out, err = e.run(t, "descriptors", e.capture)
	require.NoError(t, err)
	assert.Contains(t, out, "address: \"1.1\"")
	assert.Contains(t, out, "idVendor: 1390")

	_, err = e.run(t, "descriptors", "--product-id", "00ff", e.capture)
	assert.Error(t, err)
	_, err = e.run(t, "descriptors", "--vendor-id", "xyz", e.capture)
	assert.Error(t, err)
}

func TestBase64Command(t *testing.T) {
	e := newEnv(t)
	out, err := e.run(t, "base64", e.capture)
	require.NoError(t, err)
	assert.Equal(t, captureRecords, lines(out))
}

func TestConfigCommands(t *testing.T) {
	e := newEnv(t)
	out, err := e.run(t, "--log-level", "debug", "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, e.configPath)

	_, err = e.run(t, "config", "init")
	var exists pkgconfig.ErrConfigFileExists
	assert.ErrorAs(t, err, &exists)

	out, err = e.run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "logLevel: debug")
	assert.Contains(t, out, "retag: true")

	_, err = e.run(t, "--log-level", "verbose", "config", "show")
	assert.Error(t, err)
}

func TestStoreCommands(t *testing.T) {
	e := newEnv(t)
	db := "--db=" + filepath.Join(e.dir, "captures.db")

	out, err := e.run(t, "store", db, "import", "--name", "boot", e.capture)
	require.NoError(t, err)
	assert.Equal(t, "Imported boot: 8 pairs, 0 pending, 2 devices\n", out)

	out, err = e.run(t, "store", db, "list")
	require.NoError(t, err)
	got := lines(out)
	require.Len(t, got, 1)
	assert.True(t, strings.HasPrefix(got[0], "boot\t"))

	out, err = e.run(t, "store", db, "show", "--output", "text", "boot")
	require.NoError(t, err)
	assert.Contains(t, out, "   1.2: 056e:00ff")

	_, err = e.run(t, "store", db, "delete", "boot")
	require.NoError(t, err)
	_, err = e.run(t, "store", db, "show", "boot")
	assert.Error(t, err)
}

func TestCompletionCommand(t *testing.T) {
	e := newEnv(t)
	out, err := e.run(t, "completion")
	require.NoError(t, err)
	assert.Contains(t, out, "usbmon")

	out, err = e.run(t, "completion", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "# usbmon stats --<TAB>")
}
