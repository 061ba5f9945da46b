// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package openai

import "strings"

// repairJSON fixes the formatting slips small models make most often:
// keys missing their opening quote (`, type":` instead of `, "type":`) and
// trailing commas before a closing bracket or brace.
func repairJSON(s string) string {
	in := []rune(s)
	var out strings.Builder
	out.Grow(len(s) + 16)

	inString := false
	for i := 0; i < len(in); i++ {
		ch := in[i]

		if inString {
			out.WriteRune(ch)
			switch ch {
			case '\\':
				if i+1 < len(in) {
					i++
					out.WriteRune(in[i])
				}
			case '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
			out.WriteRune(ch)
		case ',':
			if closesNext(in, i+1) {
				continue
			}
			out.WriteRune(ch)
			i = quoteBareKey(in, i+1, &out) - 1
		case '{':
			out.WriteRune(ch)
			i = quoteBareKey(in, i+1, &out) - 1
		default:
			out.WriteRune(ch)
		}
	}
	return out.String()
}

// closesNext reports whether the next non-space rune from i closes an array or object.
func closesNext(in []rune, i int) bool {
	for ; i < len(in); i++ {
		switch in[i] {
		case ' ', '\n', '\r', '\t':
			continue
		case ']', '}':
			return true
		default:
			return false
		}
	}
	return false
}

// quoteBareKey copies whitespace from position i and, when it finds a key
// of letters and underscores followed by `":`, emits it with the missing
// opening quote. It returns the position of the first rune not yet copied.
func quoteBareKey(in []rune, i int, out *strings.Builder) int {
	for i < len(in) && (in[i] == ' ' || in[i] == '\n' || in[i] == '\r' || in[i] == '\t') {
		out.WriteRune(in[i])
		i++
	}
	if i >= len(in) || !isLetter(in[i]) {
		return i
	}

	end := i
	for end < len(in) && (isLetter(in[end]) || in[end] == '_') {
		end++
	}
	if end+1 < len(in) && in[end] == '"' && in[end+1] == ':' {
		out.WriteRune('"')
		out.WriteString(string(in[i:end]))
		out.WriteRune('"')
		return end + 1
	}
	return i
}
