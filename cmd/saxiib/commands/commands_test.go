package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saxiib/internal/app"
	"saxiib/internal/domain"
	"saxiib/internal/relay"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := run(context.Background(), root)
	return out.String(), err
}

func TestIdentityCommands(t *testing.T) {
	home := t.TempDir()

	out, err := execute(t, "init", "--home", home)
	require.NoError(t, err)
	assert.Contains(t, out, "Identity ready.")
	assert.Contains(t, out, "ID: user_")

	out, err = execute(t, "name", "--home", home, "Ada", "Lovelace")
	require.NoError(t, err)
	assert.Contains(t, out, `"Ada Lovelace"`)

	out, err = execute(t, "whoami", "--home", home)
	require.NoError(t, err)
	assert.Contains(t, out, "Name: Ada Lovelace")
	assert.Contains(t, out, `"name":"Ada Lovelace"`)

	_, err = execute(t, "name", "--home", home, "   ")
	assert.Error(t, err)
}

func TestNameWithoutIdentity(t *testing.T) {
	out, err := execute(t, "name", "--home", t.TempDir(), "Ada")
	require.NoError(t, err)
	assert.Contains(t, out, "No identity yet")
}

func TestCardCommand(t *testing.T) {
	home := t.TempDir()

	out, err := execute(t, "card", "--home", home, "--data-url")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "data:image/png;base64,"), out)

	png := filepath.Join(t.TempDir(), "me.png")
	_, err = execute(t, "card", "--home", home, "--plain", "--out", png)
	require.NoError(t, err)

	// The rendered card scans back into the other user's contacts.
	other := t.TempDir()
	out, err = execute(t, "scan", "--home", other, png)
	require.NoError(t, err)
	assert.Contains(t, out, "Added User_use")

	out, err = execute(t, "contacts", "list", "--home", other)
	require.NoError(t, err)
	assert.Contains(t, out, "User_use")
}

func TestContactsCommands(t *testing.T) {
	home := t.TempDir()
	cardText, err := json.Marshal(map[string]string{"id": "user_1_bob", "name": "Bob", "publicKey": "cGs="})
	require.NoError(t, err)

	_, err = execute(t, "contacts", "add", "--home", home, "--card", string(cardText))
	require.NoError(t, err)
	_, err = execute(t, "contacts", "add", "--home", home, "user_2_cy", "Cy", "a2V5")
	require.NoError(t, err)

	out, err := execute(t, "contacts", "list", "--home", home)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "Bob"))
	assert.True(t, strings.HasPrefix(lines[2], "Cy"))

	_, err = execute(t, "contacts", "add", "--home", home, "--card", `{"id":"x","name":""}`)
	assert.Error(t, err)
	_, err = execute(t, "contacts", "add", "--home", home)
	assert.Error(t, err)

	out, err = execute(t, "contacts", "rm", "--home", home, "Bob")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed user_1_bob.")
	_, err = execute(t, "contacts", "rm", "--home", home, "Bob")
	assert.Error(t, err)
}

func TestSendThroughRelay(t *testing.T) {
	srv := relay.NewServer(nil)
	ts := httptest.NewServer(srv)
	defer ts.Close()
	defer srv.Close()

	ctx := context.Background()
	logger, _ := test.NewNullLogger()
	bobCfg := app.DefaultConfig(t.TempDir())
	bobCfg.Store = "memory"
	bobCfg.RelayURL = ts.URL
	bob, err := app.NewWire(ctx, bobCfg, logger)
	require.NoError(t, err)
	defer bob.Close()
	bobID, err := bob.Identity.GetOrCreateIdentity(ctx)
	require.NoError(t, err)
	_, err = bob.Online(ctx, nil)
	require.NoError(t, err)

	home := t.TempDir()
	_, err = execute(t, "contacts", "add", "--home", home, string(bobID.ID), "Bob", bobID.PublicKey)
	require.NoError(t, err)

	out, err := execute(t, "send", "--home", home, "--relay", ts.URL, "Bob", "hello", "there")
	require.NoError(t, err)
	assert.Contains(t, out, "Sent to "+string(bobID.ID))

	assert.Eventually(t, func() bool {
		got := bob.Messages.List()
		return len(got) == 1 && got[0].Content == "hello there"
	}, 5*time.Second, 10*time.Millisecond)

	out, err = execute(t, "history", "--home", home, "Bob")
	require.NoError(t, err)
	assert.Contains(t, out, "-> Bob: hello there")
}

func TestSendToUnreachablePeerStillLogs(t *testing.T) {
	srv := relay.NewServer(nil)
	ts := httptest.NewServer(srv)
	defer ts.Close()
	defer srv.Close()

	home := t.TempDir()
	_, err := execute(t, "send", "--home", home, "--relay", ts.URL, "--timeout", "5s", "user_0_nobody", "anyone?")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not delivered")

	out, err := execute(t, "history", "--home", home, "-n", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "-> user_0_nobody: anyone?")
}

func TestSendMediaRejectsText(t *testing.T) {
	_, err := execute(t, "send-media", "--home", t.TempDir(), "--kind", "text", "peer", "file.png")
	assert.Error(t, err)
}

func TestHistoryDescribesMedia(t *testing.T) {
	m := domain.Message{Kind: domain.KindImage, Content: "data:image/png;base64,AAEC"}
	assert.Equal(t, "[image image/png, 3 bytes]", describeMedia(m))

	m.Content = "not a data uri"
	assert.Equal(t, "[image, unreadable]", describeMedia(m))
}
