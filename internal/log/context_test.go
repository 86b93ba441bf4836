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

package log

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
)

func TestLogContextTestSuite(t *testing.T) {
	suite.Run(t, new(LogContextTestSuite))
}

type LogContextTestSuite struct {
	baseLogTestSuite
}

func (s *LogContextTestSuite) TestWithSession() {
	ctx := WithSession(context.TODO(), 42)

	InfoContext(ctx).Msg("TestWithSession")
	s.assertMsg("{\"level\":\"info\",\"session\":42,\"message\":\"TestWithSession\"}\n")
}

func (s *LogContextTestSuite) TestWithMailbox() {
	ctx := WithMailbox(context.TODO(), "someone_at_example_dot_com")

	InfoContext(ctx).Msg("TestWithMailbox")
	s.assertMsg("{\"level\":\"info\",\"mailbox\":\"someone_at_example_dot_com\"," +
		"\"message\":\"TestWithMailbox\"}\n")
}

func (s *LogContextTestSuite) TestCombinedFields() {
	ctx := WithSession(context.TODO(), 7)
	ctx = WithOrigin(ctx, "smtp")
	ctx = WithMailbox(ctx, "box")

	InfoContext(ctx).Msg("TestCombinedFields")
	s.assertMsg("{\"level\":\"info\",\"session\":7,\"origin\":\"smtp\",\"mailbox\":\"box\"," +
		"\"message\":\"TestCombinedFields\"}\n")
}
