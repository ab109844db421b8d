// Package statusline runs the status command and turns its output into
// statusline updates.
//
// The child's first line decides the protocol. A JSON object carrying a
// version field is the header of the JSON input protocol: the rest of
// the stream is one infinite array of block arrays, each element a
// complete statusline. Anything else selects plain-text mode, where
// every line is the whole statusline.
package statusline

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"golang.org/x/sys/unix"
)

// Header is the first message of the JSON input protocol.
type Header struct {
	Version     int  `json:"version"`
	StopSignal  int  `json:"stop_signal"`  // sent when the bar hides; 0 disables
	ContSignal  int  `json:"cont_signal"`  // sent when the bar shows again; 0 disables
	ClickEvents bool `json:"click_events"` // child wants clicks on its stdin
}

// Block is one segment of a statusline.
type Block struct {
	FullText  string `json:"full_text"`
	ShortText string `json:"short_text"`

	Color      string `json:"color"`
	Background string `json:"background"`
	Border     string `json:"border"`

	MinWidth MinWidth `json:"min_width"`
	Align    string   `json:"align"` // "left", "center" or "right" within min_width

	Name     string `json:"name"`
	Instance string `json:"instance"`

	Urgent              bool `json:"urgent"`
	Separator           bool `json:"separator"`
	SeparatorBlockWidth int  `json:"separator_block_width"`
}

// blockDefaults holds what a block's optional fields mean when the child
// leaves them out.
var blockDefaults = Block{Separator: true, SeparatorBlockWidth: 9}

type blockJSON Block

func (b *Block) UnmarshalJSON(data []byte) error {
	v := blockJSON(blockDefaults)
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*b = Block(v)
	return nil
}

// MinWidth is a block's minimum width: a pixel count, or a sample string
// whose rendered width sets the minimum.
type MinWidth struct {
	Px     int
	Sample string
}

func (m *MinWidth) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &m.Sample)
	}
	return json.Unmarshal(data, &m.Px)
}

// Pixels resolves the minimum width, measuring the sample text when one
// was given.
func (m MinWidth) Pixels(measure func(string) int) int {
	if m.Sample != "" {
		return measure(m.Sample)
	}
	return m.Px
}

// Update is one complete statusline.
type Update []Block

// ClickEvent reports a pointer click on a block back to the child.
type ClickEvent struct {
	Name     string `json:"name,omitempty"`
	Instance string `json:"instance,omitempty"`
	Button   int    `json:"button"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
}

// decodeStream reads the child's whole output: it sniffs the protocol
// from the first line, reports the header if there is one, and feeds one
// Update per statusline to emit. It returns when the stream ends.
func decodeStream(r io.Reader, hdr func(Header), emit func(Update)) error {
	br := bufio.NewReader(r)
	line, err := br.ReadString('\n')
	if line != "" {
		if h, rest, ok := parseHeader(line); ok {
			hdr(h)
			return decodeBlocks(io.MultiReader(rest, br), emit)
		}
		emit(Update{plainBlock(strings.TrimRight(line, "\r\n"))})
	}
	if err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}
	return decodeLines(br, emit)
}

// parseHeader tries the line as the protocol header. A header must be a
// JSON object with version at least 1; anything else falls back to
// plain-text mode. rest holds whatever followed the header object on the
// same line.
func parseHeader(line string) (Header, io.Reader, bool) {
	h := Header{StopSignal: int(unix.SIGSTOP), ContSignal: int(unix.SIGCONT)}
	dec := json.NewDecoder(strings.NewReader(line))
	if err := dec.Decode(&h); err != nil || h.Version < 1 {
		return Header{}, nil, false
	}
	return h, dec.Buffered(), true
}

// decodeBlocks consumes the infinite array of block arrays.
func decodeBlocks(r io.Reader, emit func(Update)) error {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("status stream: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return fmt.Errorf("status stream begins with %v, want an array", tok)
	}
	for dec.More() {
		var u Update
		if err := dec.Decode(&u); err != nil {
			return fmt.Errorf("status stream: %w", err)
		}
		emit(u)
	}
	if _, err := dec.Token(); err != nil && err != io.EOF {
		return fmt.Errorf("status stream: %w", err)
	}
	return nil
}

func decodeLines(br *bufio.Reader, emit func(Update)) error {
	sc := bufio.NewScanner(br)
	for sc.Scan() {
		emit(Update{plainBlock(sc.Text())})
	}
	return sc.Err()
}

func plainBlock(line string) Block {
	b := blockDefaults
	b.FullText = line
	return b
}
