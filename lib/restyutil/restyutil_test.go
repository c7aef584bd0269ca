package restyutil

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"academia-backend/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

type memoryOutput struct {
	lock     sync.Mutex
	messages map[string]string
}

func (o *memoryOutput) Write(id, contents string) {
	o.lock.Lock()
	defer o.lock.Unlock()
	o.messages[id] = contents
}

func TestInstrumentClient(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:restyutil")
	defer cleanup()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Test", "yes")
		w.Write([]byte("hello"))
	}))
	defer server.Close()

	out := &memoryOutput{messages: map[string]string{}}
	client := resty.New()
	InstrumentClient(client, nil, out)

	res, err := client.R().
		SetAuthToken("secret-token").
		SetBody("ping").
		Post(server.URL)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "hello", res.String())

	// SetupForTesting enables debug logging, so the message is dumped
	require.Len(t, out.messages, 1)
	msg := out.messages["http-0001.txt"]
	require.Contains(t, msg, "---- REQUEST ----")
	require.Contains(t, msg, "ping")
	require.Contains(t, msg, "X-Test: yes")
	require.Contains(t, msg, "hello")
	require.NotContains(t, msg, "secret-token")
}

func TestWriteHeaders(t *testing.T) {
	headers := http.Header{}
	headers.Add("B", "2")
	headers.Add("A", "1")
	headers.Add("A", "3")
	headers.Set("Authorization", "Bearer secret")

	var out strings.Builder
	writeHeaders(&out, headers)
	require.Equal(t, "A: 1\nA: 3\nAuthorization: <redacted 13 bytes>\nB: 2\n", out.String())

	out.Reset()
	writeHeaders(&out, http.Header{})
	require.Equal(t, "", out.String())
}

func TestTruncateBody(t *testing.T) {
	require.Equal(t, "short", truncateBody("short"))

	long := strings.Repeat("a", maxDumpedBody+10)
	cut := truncateBody(long)
	require.True(t, strings.HasPrefix(cut, strings.Repeat("a", maxDumpedBody)))
	require.True(t, strings.HasSuffix(cut, "(10 more bytes)"))
}

func TestFilesystemOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dumps")
	out, err := NewFilesystemOutput(dir)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, dir, out.Directory())

	out.Write("page.html", "<div></div>")
	contents, err := os.ReadFile(filepath.Join(dir, "page.html"))
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "<div></div>", string(contents))
}
