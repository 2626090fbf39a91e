package card_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saxiib/internal/card"
	"saxiib/internal/domain"
)

type scriptedScanner struct {
	texts []string
	fail  error
	seen  int
}

func (s *scriptedScanner) Scan(ctx context.Context, onText func(string) bool) error {
	for _, text := range s.texts {
		s.seen++
		if !onText(text) {
			return nil
		}
	}
	return s.fail
}

type recordingDirectory struct {
	contacts []domain.Contact
	err      error
}

func (d *recordingDirectory) Upsert(_ context.Context, c domain.Contact) error {
	if d.err != nil {
		return d.err
	}
	d.contacts = append(d.contacts, c)
	return nil
}

func TestScanSession_SkipsUndecodableCodes(t *testing.T) {
	scanner := &scriptedScanner{texts: []string{
		"https://example.com",
		`{"id":"x"}`,
		`{"id":"peer1","name":"Bea","publicKey":"k"}`,
		`{"id":"peer2","name":"Cal","publicKey":"k"}`,
	}}
	dir := &recordingDirectory{}
	var reported []error

	s := &card.ScanSession{Scanner: scanner, Directory: dir, OnError: func(err error) { reported = append(reported, err) }}
	c, ok, err := s.Run(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, domain.PeerID("peer1"), c.ID)
	assert.Equal(t, 3, scanner.seen, "scanning stops after the first accepted code")
	require.Len(t, dir.contacts, 1)
	require.Len(t, reported, 2)
	assert.ErrorIs(t, reported[0], domain.ErrMalformedPayload)
	assert.ErrorIs(t, reported[1], domain.ErrInvalidFormat)
}

func TestScanSession_CaptureFailureEndsSession(t *testing.T) {
	capture := &domain.CaptureError{Err: errors.New("camera busy")}
	scanner := &scriptedScanner{texts: []string{"junk"}, fail: capture}
	var reported []error

	s := &card.ScanSession{Scanner: scanner, Directory: &recordingDirectory{}, OnError: func(err error) { reported = append(reported, err) }}
	_, ok, err := s.Run(context.Background())
	assert.False(t, ok)
	assert.ErrorIs(t, err, capture)
	require.Len(t, reported, 2)
	assert.ErrorAs(t, reported[1], &capture)
}

func TestScanSession_StorageFailureAborts(t *testing.T) {
	storeErr := &domain.StorageError{Op: "set", Key: "contacts", Err: errors.New("disk full")}
	scanner := &scriptedScanner{texts: []string{`{"id":"p","name":"n","publicKey":"k"}`}}

	s := &card.ScanSession{Scanner: scanner, Directory: &recordingDirectory{err: storeErr}}
	_, ok, err := s.Run(context.Background())
	assert.False(t, ok)
	assert.ErrorIs(t, err, storeErr)
}

func TestImageScanner_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	text, err := card.Encode(domain.ContactCard{ID: "user_9_zz", DisplayName: "Dee", PublicKey: "a2V5"})
	require.NoError(t, err)
	b, err := card.NewRenderer(card.PlainStyle).Render(text)
	require.NoError(t, err)

	path := filepath.Join(dir, "card.png")
	require.NoError(t, os.WriteFile(path, b, 0o600))

	contacts := &recordingDirectory{}
	s := &card.ScanSession{Scanner: card.ImageScanner{Paths: []string{path}}, Directory: contacts}
	c, ok, err := s.Run(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Dee", c.DisplayName)
}

func TestImageScanner_MissingFileIsCaptureError(t *testing.T) {
	s := card.ImageScanner{Paths: []string{filepath.Join(t.TempDir(), "nope.png")}}
	err := s.Scan(context.Background(), func(string) bool { return true })

	var ce *domain.CaptureError
	assert.ErrorAs(t, err, &ce)
}
