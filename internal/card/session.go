package card

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"saxiib/internal/domain"
)

// Upserter is the part of the contact directory a scan session writes to.
type Upserter interface {
	Upsert(ctx context.Context, c domain.Contact) error
}

// ScanSession reads codes until one decodes into a contact, then stores it.
//
// Undecodable codes are reported through OnError and scanning continues.
// A capture failure is reported and ends the session.
type ScanSession struct {
	Scanner   Scanner
	Directory Upserter
	OnError   func(err error)
	Log       *logrus.Entry
}

// Run scans until a contact is accepted, the scanner stops or ctx is done.
// It returns the accepted contact and whether one was found.
func (s *ScanSession) Run(ctx context.Context) (domain.Contact, bool, error) {
	log := s.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	var (
		accepted  domain.Contact
		found     bool
		upsertErr error
	)
	err := s.Scanner.Scan(ctx, func(text string) bool {
		c, err := Decode(text)
		if err != nil {
			log.WithError(err).Debug("rejected scanned code")
			s.report(err)
			return true
		}
		if err := s.Directory.Upsert(ctx, c); err != nil {
			log.WithError(err).WithField("contact", c.ID).Error("store scanned contact")
			upsertErr = err
			s.report(err)
			return false
		}
		accepted, found = c, true
		log.WithField("contact", c.ID).Info("contact added from scan")
		return false
	})
	if upsertErr != nil {
		return domain.Contact{}, false, upsertErr
	}
	if err != nil {
		var ce *domain.CaptureError
		if errors.As(err, &ce) {
			log.WithError(err).Warn("scan aborted")
			s.report(err)
		}
		return domain.Contact{}, false, err
	}
	return accepted, found, nil
}

func (s *ScanSession) report(err error) {
	if s.OnError != nil {
		s.OnError(err)
	}
}
