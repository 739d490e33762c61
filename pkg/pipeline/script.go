package pipeline

import (
	"bufio"
	"bytes"
	"io"

	"github.com/vango-dev/livecoll/internal/errors"
)

// maxScriptLine bounds the length of one script line.
const maxScriptLine = 1 << 20

// ReadScript reads a JSON lines operation script. Every non-blank line holds
// one operation object or an array of them; lines starting with # are
// comments. name is used in error locations.
func ReadScript(r io.Reader, name string) ([]Op, error) {
	var ops []Op
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxScriptLine)

	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 || text[0] == '#' {
			continue
		}
		parsed, err := ParseOps(text)
		if err != nil {
			return nil, errors.FromError(err, "E121").WithLocation(name, line, 1)
		}
		ops = append(ops, parsed...)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.New("E126").WithDetailf("Reading %s", name).Wrap(err)
	}
	return ops, nil
}
