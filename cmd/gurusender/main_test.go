package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gurusender/internal/config"
	"gurusender/internal/logging"
	"gurusender/internal/sender"
)

const contactsCSV = "nome,telefone,cidade\n" +
	"Ana,(11) 98765-4321,São Paulo\n" +
	"Bruno,21 98765-4321,Rio\n" +
	"Carla,123,Recife\n"

// setup points the command globals at a temp workspace.
func setup(t *testing.T) (dir string, out *bytes.Buffer, cmd *cobra.Command) {
	t.Helper()
	dir = t.TempDir()

	cfg = config.DefaultConfig()
	cfg.Pacing.MinDelay = "0s"
	cfg.Pacing.MaxDelay = "0s"
	logs = logging.Nop()
	configPath = filepath.Join(dir, "config.yaml")

	sendFile = filepath.Join(dir, "contatos.csv")
	require.NoError(t, os.WriteFile(sendFile, []byte(contactsCSV), 0o644))
	sendMessage = "Olá {nome}, tudo bem?"
	sendMessageFile = ""
	sendDryRun = true
	t.Cleanup(func() {
		sendFile, sendMessage, sendMessageFile, sendDryRun = "", "", "", false
	})

	out = &bytes.Buffer{}
	cmd = &cobra.Command{}
	cmd.SetOut(out)
	cmd.SetContext(context.Background())
	return dir, out, cmd
}

func TestSendDryRun(t *testing.T) {
	_, out, cmd := setup(t)

	require.NoError(t, runSend(cmd, nil))

	got := out.String()
	assert.Contains(t, got, "[dry-run] https://wa.me/5511987654321?text=Ol%C3%A1%20Ana%2C%20tudo%20bem%3F")
	assert.Contains(t, got, "[dry-run] https://wa.me/5521987654321?text=")
	assert.Contains(t, got, "failed  row 4  phone")
	assert.Contains(t, got, "Total: 3  Sent: 2  Failed: 1  Skipped: 0")
	assert.Contains(t, got, "  phone: 1")
}

func TestSendMessageFile(t *testing.T) {
	dir, out, cmd := setup(t)
	sendMessage = ""
	sendMessageFile = filepath.Join(dir, "msg.txt")
	require.NoError(t, os.WriteFile(sendMessageFile, []byte("Oi {nome} de {cidade}\n"), 0o644))

	require.NoError(t, runSend(cmd, nil))
	assert.Contains(t, out.String(), "?text=Oi%20Ana%20de%20S%C3%A3o%20Paulo")
}

func TestSendAborts(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(dir string)
		stage   string
		wantErr string
	}{
		{
			name:   "no file",
			mutate: func(string) { sendFile = "" },
			stage:  sender.StageInput,
		},
		{
			name:   "empty message",
			mutate: func(string) { sendMessage = "   " },
			stage:  sender.StageTemplate,
		},
		{
			name:   "missing placeholder",
			mutate: func(string) { sendMessage = "Oi {cidade}" },
			stage:  sender.StageTemplate,
		},
		{
			name:   "unknown column",
			mutate: func(string) { sendMessage = "Oi {nome} {bairro}" },
			stage:  sender.StageTemplate,
		},
		{
			name:   "missing file",
			mutate: func(dir string) { sendFile = filepath.Join(dir, "nope.csv") },
			stage:  sender.StageLoad,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, out, cmd := setup(t)
			tt.mutate(dir)

			err := runSend(cmd, nil)
			var ae *sender.AbortError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, tt.stage, ae.Stage)
			assert.NotContains(t, out.String(), "[dry-run]")
		})
	}
}

func TestSendInterrupted(t *testing.T) {
	_, out, cmd := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cmd.SetContext(ctx)

	err := runSend(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interrupted: 3 contacts skipped")
	assert.NotContains(t, out.String(), "[dry-run]")
	assert.Contains(t, out.String(), "Total: 3  Sent: 0  Failed: 0  Skipped: 3", "the summary is printed before the error")
}

func TestReadMessage(t *testing.T) {
	got, err := readMessage("inline", "")
	require.NoError(t, err)
	assert.Equal(t, "inline", got)

	_, err = readMessage("inline", "file.txt")
	assert.Error(t, err)

	_, err = readMessage("", filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestCheck(t *testing.T) {
	_, out, cmd := setup(t)

	err := runCheck(cmd, nil)
	require.Error(t, err, "row 4 has an invalid phone")
	assert.Contains(t, err.Error(), "1 of 3 rows would fail")

	got := out.String()
	assert.Contains(t, got, "ok      row 2  5511987654321")
	assert.Contains(t, got, "FAIL    row 4  phone")
	assert.Contains(t, got, "3 rows, 2 ok, 1 failing")
}

func TestCheckAllOK(t *testing.T) {
	dir, out, cmd := setup(t)
	sendFile = filepath.Join(dir, "ok.csv")
	require.NoError(t, os.WriteFile(sendFile, []byte("nome,telefone\nAna,11987654321\n"), 0o644))

	require.NoError(t, runCheck(cmd, nil))
	assert.Contains(t, out.String(), "1 rows, 1 ok, 0 failing")
}

func TestCheckBannedWord(t *testing.T) {
	_, out, cmd := setup(t)
	cfg.Compliance.BannedWords = []string{"tudo"}

	require.Error(t, runCheck(cmd, nil))
	assert.Contains(t, out.String(), "FAIL    row 2  compliance")
}

func TestWords(t *testing.T) {
	_, out, cmd := setup(t)

	require.NoError(t, runWordsAdd(cmd, []string{"golpe", "Pix"}))
	stored, err := config.LoadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, stored.Compliance.BannedWords, "golpe")
	assert.Contains(t, stored.Compliance.BannedWords, "Pix")
	n := len(stored.Compliance.BannedWords)

	out.Reset()
	require.NoError(t, runWordsAdd(cmd, []string{"PIX"}))
	assert.Contains(t, out.String(), `"PIX" is already banned`)

	require.NoError(t, runWordsRemove(cmd, []string{"pix", "nada"}))
	assert.Contains(t, out.String(), `"nada" is not in the list`)
	stored, err = config.LoadFile(configPath)
	require.NoError(t, err)
	assert.Len(t, stored.Compliance.BannedWords, n-1)
	assert.NotContains(t, stored.Compliance.BannedWords, "Pix")

	_, err = os.Stat(configPath)
	assert.NoError(t, err)
}

func TestWordsAddBlank(t *testing.T) {
	_, _, cmd := setup(t)
	assert.Error(t, runWordsAdd(cmd, []string{"  "}))
	_, err := os.Stat(configPath)
	assert.True(t, os.IsNotExist(err), "nothing is written on error")
}

func TestWordsList(t *testing.T) {
	_, out, cmd := setup(t)
	cfg.Compliance.BannedWords = []string{"um", "dois"}

	require.NoError(t, runWordsList(cmd, nil))
	assert.Equal(t, "um\ndois\n", out.String())
}
