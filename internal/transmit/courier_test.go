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

package transmit

import (
	"errors"
	"io"
	"net"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/lukasdietrich/postfach/internal/compose"
	"github.com/lukasdietrich/postfach/internal/models"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, StatusRejected, classify(&textproto.Error{Code: 550, Msg: "no such user"}))
	assert.Equal(t, StatusRejected, classify(&textproto.Error{Code: 451, Msg: "try again"}))
	assert.Equal(t, StatusConnectionFailed, classify(io.EOF))
	assert.Equal(t, StatusConnectionFailed, classify(errors.New("broken pipe")))
}

func TestSendStatusString(t *testing.T) {
	assert.Equal(t, "sent", StatusSent.String())
	assert.Equal(t, "rejected", StatusRejected.String())
	assert.Equal(t, "connection failed", StatusConnectionFailed.String())
}

func TestCourierTestSuite(t *testing.T) {
	suite.Run(t, new(CourierTestSuite))
}

type CourierTestSuite struct {
	suite.Suite

	courier *Courier
}

func (s *CourierTestSuite) SetupTest() {
	s.courier = &Courier{hostname: "test.example"}
}

func (s *CourierTestSuite) parseAddress(raw string) models.Address {
	addr, err := models.Parse(raw)
	s.Require().NoError(err)
	return addr
}

func (s *CourierTestSuite) sampleMessage() *compose.Message {
	return &compose.Message{
		From:    s.parseAddress("a@x.com"),
		To:      []models.Address{s.parseAddress("b@y.com")},
		Subject: "Greetings",
		Body:    "Hello!",
		Date:    time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

// fakeReceiver is a minimal scripted smtp server for a single connection.
type fakeReceiver struct {
	rcptReply string

	mu       sync.Mutex
	commands []string
	data     string
}

// listen starts the receiver on an ephemeral port and returns it.
func (f *fakeReceiver) listen(t *testing.T) (host string, port uint16) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() {
		defer listener.Close()

		conn, err := listener.Accept()
		if err != nil {
			return
		}

		defer conn.Close()
		f.serve(textproto.NewConn(conn))
	}()

	return "127.0.0.1", uint16(listener.Addr().(*net.TCPAddr).Port)
}

func (f *fakeReceiver) serve(conn *textproto.Conn) {
	_ = conn.PrintfLine("220 fake ready")

	for {
		line, err := conn.ReadLine()
		if err != nil {
			return
		}

		f.mu.Lock()
		f.commands = append(f.commands, line)
		f.mu.Unlock()

		verb := strings.ToUpper(strings.SplitN(line, " ", 2)[0])

		switch verb {
		case "RCPT":
			_ = conn.PrintfLine("%s", f.rcptReply)

		case "DATA":
			_ = conn.PrintfLine("354 go ahead")

			data, err := conn.ReadDotBytes()
			if err != nil {
				return
			}

			f.mu.Lock()
			f.data = string(data)
			f.mu.Unlock()

			_ = conn.PrintfLine("250 accepted")

		case "QUIT":
			_ = conn.PrintfLine("221 bye")
			return

		default:
			_ = conn.PrintfLine("250 ok")
		}
	}
}

func (f *fakeReceiver) receivedData() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data
}

func (s *CourierTestSuite) TestSend() {
	receiver := &fakeReceiver{rcptReply: "250 ok"}
	host, port := receiver.listen(s.T())

	result := s.courier.Send(s.sampleMessage(), host, port)

	s.Require().NoError(result.Reason)
	s.Assert().Equal(StatusSent, result.Status)

	data := receiver.receivedData()
	s.Assert().Contains(data, "Subject: Greetings")
	s.Assert().Contains(data, "Hello!")
}

func (s *CourierTestSuite) TestSendRejectedRecipient() {
	receiver := &fakeReceiver{rcptReply: "550 no such user"}
	host, port := receiver.listen(s.T())

	result := s.courier.Send(s.sampleMessage(), host, port)

	s.Assert().Equal(StatusRejected, result.Status)

	var protoErr *textproto.Error
	s.Require().ErrorAs(result.Reason, &protoErr)
	s.Assert().Equal(550, protoErr.Code)
}

func (s *CourierTestSuite) TestSendConnectionFailed() {
	// Grab a free port and close it again, so nothing is listening.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	s.Require().NoError(err)

	port := uint16(listener.Addr().(*net.TCPAddr).Port)
	s.Require().NoError(listener.Close())

	result := s.courier.Send(s.sampleMessage(), "127.0.0.1", port)

	s.Assert().Equal(StatusConnectionFailed, result.Status)
	s.Assert().Error(result.Reason)
}
