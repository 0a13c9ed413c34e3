// Copyright (c) 2024 Zach Champion
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH
// REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT,
// INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM
// LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR
// OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR
// PERFORMANCE OF THIS SOFTWARE.
//
// SPDX-License-Identifier: 0BSD

package sbtext_test

import (
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/ZachDaChampion/simple-buffers/compiler"
	"github.com/ZachDaChampion/simple-buffers/encoding/sbtext"
	"github.com/ZachDaChampion/simple-buffers/internal/testutil"
	"github.com/ZachDaChampion/simple-buffers/schema"
	"github.com/ZachDaChampion/simple-buffers/syntax"
)

const chatSchema = `
enum Status {
    ok = 0;
    error = 70000;
}

sequence Message {
    status: Status;
    sender: User;
    text: str;
    tags: [str];
    attachment: oneof {
        image: [u8];
        link: str;
    };
}

sequence User {
    id: u32;
    name: str;
}
`

func compileChat(t *testing.T) *schema.Schema {
	t.Helper()
	parsed, err := syntax.Parse([]byte(chatSchema))
	testutil.AssertNoError(t, err)
	result := compiler.Compile(parsed, compiler.WithSchemaName("chat"))
	for _, err := range result.Errors {
		testutil.ExpectNoError(t, err)
	}
	if result.Schema() == nil {
		t.FailNow()
	}
	return result.Schema()
}

func TestEncodeGolden(t *testing.T) {
	s := compileChat(t)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "chat", []byte(sbtext.Encode(s)))
}

type failingWriter struct{}

var errWrite = errors.New("write failed")

func (failingWriter) Write([]byte) (int, error) {
	return 0, errWrite
}

func TestEncodeToError(t *testing.T) {
	t.Parallel()

	err := sbtext.EncodeTo(compileChat(t), failingWriter{})
	testutil.AssertErrorIs(t, err, errWrite)
}
