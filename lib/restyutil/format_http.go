package restyutil

import (
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/go-resty/resty/v2"
)

// bodies larger than this are cut in dumps, portal pages run into the
// hundreds of kilobytes.
const maxDumpedBody = 64 * 1024

// headers whose values carry credentials or session state.
var redactedHeaders = []string{
	"Authorization",
	"Cookie",
	"Set-Cookie",
	"Proxy-Authorization",
}

func redact(key, value string) string {
	if !slices.Contains(redactedHeaders, http.CanonicalHeaderKey(key)) {
		return value
	}
	return fmt.Sprintf("<redacted %d bytes>", len(value))
}

func writeHeaders(out *strings.Builder, headers http.Header) {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		for _, v := range headers[k] {
			fmt.Fprintf(out, "%s: %s\n", k, redact(k, v))
		}
	}
}

func truncateBody(body string) string {
	if len(body) <= maxDumpedBody {
		return body
	}
	return fmt.Sprintf("%s\n... (%d more bytes)", body[:maxDumpedBody], len(body)-maxDumpedBody)
}

func requestBody(req *http.Request) string {
	if req == nil || req.GetBody == nil {
		return ""
	}
	body, err := req.GetBody()
	if err != nil {
		return fmt.Sprintf("<failed to get request body: %v>", err)
	}
	if body == nil {
		return ""
	}
	defer body.Close()
	buff, err := io.ReadAll(body)
	if err != nil {
		return fmt.Sprintf("<failed to read request body: %v>", err)
	}
	return string(buff)
}

func formatHttpMessage(res *resty.Response) string {
	var out strings.Builder

	out.WriteString("---- REQUEST ----\n\n")
	fmt.Fprintf(&out, "%s %s\n\n", res.Request.Method, res.Request.URL)
	if raw := res.Request.RawRequest; raw != nil {
		writeHeaders(&out, raw.Header)
		out.WriteString("\n")
		out.WriteString(truncateBody(requestBody(raw)))
	}

	responseUrl := res.Request.URL
	if res.RawResponse != nil {
		if location, err := res.RawResponse.Location(); err == nil {
			responseUrl = location.String()
		}
	}

	out.WriteString("\n\n---- RESPONSE ----\n\n")
	fmt.Fprintf(&out, "%d %s\n\n", res.StatusCode(), responseUrl)
	writeHeaders(&out, res.Header())
	out.WriteString("\n")
	out.WriteString(truncateBody(res.String()))

	return out.String()
}
