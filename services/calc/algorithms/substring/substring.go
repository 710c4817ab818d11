// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package substring counts occurrences of a phrase in a text.
package substring

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/AleutianAI/AleutianCalc/services/calc/algorithms/check"
	"github.com/AleutianAI/AleutianCalc/services/calc/builder"
	"github.com/AleutianAI/AleutianCalc/services/calc/core"
)

// Name is the catalog directory of this algorithm.
const Name = "substring_in_a_string"

// Count returns how often find occurs in text.
//
// A single-character find is counted as a plain substring of the lower-cased
// text. Longer phrases are split on spaces and matched word by word: a match
// starts at every word of text whose successive words contain the phrase
// words in order. Matching is case-insensitive.
func Count(text, find string) int64 {
	text = strings.ToLower(text)
	if utf8.RuneCountInString(find) == 1 {
		return int64(strings.Count(text, find))
	}

	phrase := strings.Split(strings.ToLower(find), " ")
	words := strings.Split(text, " ")
	var count int64
	for start := range words {
		at, matched := start, 0
		for _, w := range phrase {
			if at >= len(words) {
				break
			}
			if strings.Contains(words[at], w) {
				matched++
				at++
			}
		}
		if matched == len(phrase) {
			count++
		}
	}
	return count
}

// Main reads text and findtext and returns {"num_count"}.
func Main(_ context.Context, p core.Params) (core.Params, error) {
	text, err := p.Str("text")
	if err != nil {
		return nil, err
	}
	find, err := p.Str("findtext")
	if err != nil {
		return nil, err
	}
	return core.Params{"num_count": Count(text, find)}, nil
}

func texts(text, find any) core.Params {
	return core.Params{"text": text, "findtext": find}
}

// Plugin returns the registration for this algorithm.
func Plugin() builder.Plugin {
	return builder.Plugin{
		Name: Name,
		Main: Main,
		Tests: []builder.UnitTest{
			check.Fails("findtext not a string", Main, texts("one", int64(0)), "findtext is not a string"),
			check.Outputs("long text", Main, texts("Hello world world hello hello hello world", "hello world"), core.Params{"num_count": int64(2)}),
			check.Outputs("short findtext", Main, texts("it is very long text", "i"), core.Params{"num_count": int64(2)}),
			check.Outputs("findtext longer than text", Main, texts("text is ", "text is very long"), core.Params{"num_count": int64(0)}),
			check.Outputs("equal texts", Main, texts("texts", "texts"), core.Params{"num_count": int64(1)}),
		},
	}
}
