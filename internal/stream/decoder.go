package stream

import (
	"bytes"
	"fmt"
	"mime"
	"strconv"
	"strings"

	"github.com/agrilab/agrilab-go/internal/util"
)

var crlf = []byte("\r\n")

// BoundaryFromContentType extracts the boundary token from the
// response's declared content type. The whole decode fails without it.
func BoundaryFromContentType(contentType string) (string, error) {
	if contentType == "" {
		return "", &ProtocolError{Reason: "missing content type"}
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", &ProtocolError{Reason: fmt.Sprintf("unparsable content type %q", contentType)}
	}
	boundary := params["boundary"]
	if boundary == "" {
		return "", &ProtocolError{Reason: "no boundary parameter in content type"}
	}
	return boundary, nil
}

// Decode reconstructs the ordered parts from a complete or truncated
// response body. The boundary is scanned as a raw byte pattern; the
// body is never round-tripped through a text decoding, so non-UTF8 byte
// sequences inside documents survive intact.
//
// A truncated body (cancelled job, no terminating marker) is not an
// error: every part that arrived whole is returned. Individual parts
// with unparsable headers or empty bodies are dropped and recorded as
// diagnostics.
func Decode(body []byte, boundary string) ([]Part, []PartDiagnostic, error) {
	delim := []byte("--" + boundary)

	var offsets []int
	for i := 0; ; {
		j := bytes.Index(body[i:], delim)
		if j < 0 {
			break
		}
		offsets = append(offsets, i+j)
		i += j + len(delim)
	}
	if len(offsets) == 0 {
		return nil, nil, &ProtocolError{Reason: "boundary delimiter not found in body"}
	}

	var parts []Part
	var diags []PartDiagnostic
	for k, off := range offsets {
		start := off + len(delim)
		if bytes.HasPrefix(body[start:], []byte("--")) {
			// Terminating form ends the sequence.
			break
		}
		if bytes.HasPrefix(body[start:], crlf) {
			start += len(crlf)
		}
		end := len(body)
		if k+1 < len(offsets) {
			end = offsets[k+1]
		}
		seg := body[start:end]

		part, reason := parsePart(seg, len(parts))
		if reason != "" {
			diags = append(diags, PartDiagnostic{Offset: off, Reason: reason})
			continue
		}
		parts = append(parts, part)
	}
	return parts, diags, nil
}

// parsePart splits one candidate segment into headers and body. The
// segment runs from just past the boundary line to the start of the
// next boundary (or the end of a truncated body). Returns a non-empty
// reason when the part must be dropped.
func parsePart(seg []byte, position int) (Part, string) {
	headerEnd := bytes.Index(seg, []byte("\r\n\r\n"))
	if headerEnd < 0 {
		return Part{}, "no blank line between headers and body"
	}

	headers, ok := parseHeaderBlock(seg[:headerEnd])
	if !ok {
		return Part{}, "unparsable header block"
	}

	// Everything past the blank line is body bytes. Length is a byte
	// offset computation from here on, never a string operation.
	raw := seg[headerEnd+4:]
	var data []byte
	if lengthStr, hasLength := headers["content-length"]; hasLength {
		n, err := strconv.Atoi(lengthStr)
		if err != nil || n < 0 {
			return Part{}, fmt.Sprintf("bad content-length %q", lengthStr)
		}
		if n > len(raw) {
			// The stream was cut mid-body; this part never arrived whole.
			return Part{}, fmt.Sprintf("truncated body: declared %d bytes, got %d", n, len(raw))
		}
		data = raw[:n]
	} else {
		// Fallback: body runs up to the next boundary, minus the
		// framing CRLF that precedes it.
		data = bytes.TrimSuffix(raw, crlf)
	}
	if len(data) == 0 {
		return Part{}, "zero-length body"
	}

	id := headers[strings.ToLower(HeaderItemID)]
	if id == "" {
		return Part{}, "missing item id header"
	}
	name := util.DecodeDisplayName(headers[strings.ToLower(HeaderItemName)])
	if name == "" {
		name = filenameFromDisposition(headers["content-disposition"])
	}

	index := position
	if idxStr := headers[strings.ToLower(HeaderItemIndex)]; idxStr != "" {
		if idx, err := strconv.Atoi(idxStr); err == nil {
			index = idx
		}
	}

	// Copy the body out of the shared backing array so a part can
	// outlive the response buffer.
	owned := make([]byte, len(data))
	copy(owned, data)

	return Part{Index: index, ID: id, DisplayName: name, Data: owned}, ""
}

// parseHeaderBlock parses colon-separated header lines into a map with
// case-insensitive (lowercased) keys.
func parseHeaderBlock(block []byte) (map[string]string, bool) {
	headers := make(map[string]string)
	for _, line := range strings.Split(string(block), "\r\n") {
		if line == "" {
			continue
		}
		key, value, found := strings.Cut(line, ":")
		if !found {
			return nil, false
		}
		headers[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}
	return headers, true
}

// filenameFromDisposition recovers a display name from the
// Content-Disposition header when the item name header is absent.
func filenameFromDisposition(disposition string) string {
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	name := util.DecodeDisplayName(params["filename"])
	return strings.TrimSuffix(name, ".pdf")
}
