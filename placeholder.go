package sqlbind

import (
	"strconv"

	"github.com/valyala/bytebufferpool"
)

// nextToken looks for a generated parameter placeholder (@p_<N>_) in s
// starting at from. A token is matched as a whole: it can not be a part
// of a longer identifier, so @p_1_ is never found inside @p_10_ or @p_1_x.
// It returns start == -1 if there are no more tokens.
func nextToken(s string, from int) (start, end, index int) {
	for i := from; i < len(s); i++ {
		if s[i] != '@' {
			continue
		}
		if i > 0 && (isIdentByte(s[i-1]) || s[i-1] == '@') {
			continue
		}
		if i+3 >= len(s) || s[i+1] != 'p' || s[i+2] != '_' {
			continue
		}
		j := i + 3
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		digits := j - i - 3
		if digits == 0 || digits > 9 || (digits > 1 && s[i+3] == '0') {
			continue
		}
		if j >= len(s) || s[j] != '_' {
			continue
		}
		if j+1 < len(s) && isIdentByte(s[j+1]) {
			continue
		}
		n, _ := strconv.Atoi(s[i+3 : j])
		return i, j + 1, n
	}
	return -1, -1, 0
}

// renumber copies s into buf shifting the index of every generated
// placeholder token by offset. Tokens are rewritten in a single pass.
func renumber(s string, offset int, buf *bytebufferpool.ByteBuffer) {
	start := 0
	for {
		from, to, index := nextToken(s, start)
		if from < 0 {
			break
		}
		buf.WriteString(s[start:from])
		buf.WriteByte('@')
		buf.WriteString(ParamName(index + offset))
		start = to
	}
	buf.WriteString(s[start:])
}

// renumbered returns s with generated placeholders shifted by offset.
func renumbered(s string, offset int) string {
	if offset == 0 {
		return s
	}
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	renumber(s, offset, buf)
	return buf.String()
}

// tokenIndexes returns the set of generated parameter indexes referenced in s.
func tokenIndexes(s string) map[int]struct{} {
	found := make(map[int]struct{})
	for start := 0; ; {
		from, to, index := nextToken(s, start)
		if from < 0 {
			return found
		}
		found[index] = struct{}{}
		start = to
	}
}

func isIdentByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}
