// Copyright (C) 2021  Lukas Dietrich <lukas@lukasdietrich.com>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package delivery

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/lukasdietrich/postfach/internal/crypto"
	"github.com/lukasdietrich/postfach/internal/models"
	"github.com/lukasdietrich/postfach/internal/storage"
)

func TestMailmanTestSuite(t *testing.T) {
	suite.Run(t, new(MailmanTestSuite))
}

type MailmanTestSuite struct {
	suite.Suite

	fs       afero.Fs
	idGen    *crypto.MockIDGenerator
	observer *recordingObserver
	mailman  *Mailman
}

func (s *MailmanTestSuite) SetupTest() {
	s.fs = afero.NewMemMapFs()
	s.idGen = new(crypto.MockIDGenerator)
	s.observer = new(recordingObserver)

	mailboxes, err := storage.NewMailboxes(s.fs, s.idGen,
		storage.MailboxesOptions{Foldername: "/test/mailboxes"})
	s.Require().NoError(err)

	s.mailman = NewMailman(mailboxes, s.observer)
}

func (s *MailmanTestSuite) TeardownTest() {
	mock.AssertExpectationsForObjects(s.T(), s.idGen)
}

// recordingObserver remembers every notification for later assertions.
type recordingObserver struct {
	delivered []storage.DeliveryRecord
	failed    []string
}

func (o *recordingObserver) MailDelivered(_ context.Context, record *storage.DeliveryRecord) {
	o.delivered = append(o.delivered, *record)
}

func (o *recordingObserver) MailFailed(_ context.Context, recipient string, _ error) {
	o.failed = append(o.failed, recipient)
}

func mailWithSubject(subject string) []byte {
	content := "From: a@x.com\r\n" +
		"To: b@y.com\r\n"

	if subject != "" {
		content += "Subject: " + subject + "\r\n"
	}

	return []byte(content + "\r\n" + "Hello!\r\n")
}

func (s *MailmanTestSuite) TestDeliverMixedRecipients() {
	s.idGen.On("GenerateID").Return("suffix1", nil).Once()

	envelope := models.Envelope{
		From:    "a@x.com",
		To:      []string{"b@y.com", "not-an-address"},
		Content: mailWithSubject("Greetings"),
	}

	outcome, err := s.mailman.Deliver(context.TODO(), envelope)
	s.Require().NoError(err)
	s.Require().NotNil(outcome)

	s.Require().Len(outcome.Delivered, 1)
	s.Assert().Equal("b@y.com", outcome.Delivered[0].To)
	s.Assert().Equal("a@x.com", outcome.Delivered[0].From)
	s.Assert().Equal("Greetings", outcome.Delivered[0].Subject)

	s.Require().Len(outcome.Failures, 1)
	s.Assert().Equal("not-an-address", outcome.Failures[0].Recipient)
	s.Assert().ErrorIs(outcome.Failures[0].Reason, models.ErrInvalidAddressFormat)

	s.Assert().Equal(outcome.Delivered, s.observer.delivered)
	s.Assert().Equal([]string{"not-an-address"}, s.observer.failed)

	exists, err := afero.Exists(s.fs,
		"/test/mailboxes/b_at_y_dot_com/"+outcome.Delivered[0].Filename)
	s.Require().NoError(err)
	s.Assert().True(exists)
}

func (s *MailmanTestSuite) TestDeliverMultipleValidRecipients() {
	s.idGen.On("GenerateID").Return("suffix1", nil).Once()
	s.idGen.On("GenerateID").Return("suffix2", nil).Once()

	envelope := models.Envelope{
		From:    "a@x.com",
		To:      []string{"b@y.com", "c@z.com"},
		Content: mailWithSubject("Greetings"),
	}

	outcome, err := s.mailman.Deliver(context.TODO(), envelope)
	s.Require().NoError(err)

	s.Assert().Len(outcome.Delivered, 2)
	s.Assert().Empty(outcome.Failures)
}

func (s *MailmanTestSuite) TestDeliverNoValidRecipients() {
	envelope := models.Envelope{
		From:    "a@x.com",
		To:      []string{"not-an-address", "dotless@domain"},
		Content: mailWithSubject("Greetings"),
	}

	outcome, err := s.mailman.Deliver(context.TODO(), envelope)
	s.Assert().ErrorIs(err, ErrNoValidRecipients)
	s.Assert().Nil(outcome)

	s.Assert().Empty(s.observer.delivered)
	s.Assert().Equal([]string{"not-an-address", "dotless@domain"}, s.observer.failed)

	folders, err := afero.ReadDir(s.fs, "/test/mailboxes")
	s.Require().NoError(err)
	s.Assert().Empty(folders)
}

func (s *MailmanTestSuite) TestDeliverWithoutSubject() {
	s.idGen.On("GenerateID").Return("suffix1", nil).Once()

	envelope := models.Envelope{
		From:    "a@x.com",
		To:      []string{"b@y.com"},
		Content: mailWithSubject(""),
	}

	outcome, err := s.mailman.Deliver(context.TODO(), envelope)
	s.Require().NoError(err)

	s.Require().Len(outcome.Delivered, 1)
	s.Assert().Equal("No Subject", outcome.Delivered[0].Subject)
}

func (s *MailmanTestSuite) TestDeliverUnparsableContent() {
	envelope := models.Envelope{
		From:    "a@x.com",
		To:      []string{"b@y.com"},
		Content: []byte("this is no mail message"),
	}

	outcome, err := s.mailman.Deliver(context.TODO(), envelope)
	s.Assert().ErrorIs(err, ErrUnparsableContent)
	s.Assert().Nil(outcome)
}
