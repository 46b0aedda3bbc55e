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

// Package chunker turns extracted document pages into overlapping word-window
// chunks suitable for embedding.
//
// The pipeline is: clean each page's text, join pages into one full text,
// detect section headings, then slide a fixed-size word window across the
// text. Each chunk carries approximate provenance: the page it starts on and
// the nearest preceding section heading. Character offsets are estimated from
// a fixed average word length, trading exactness for a single consistent
// coordinate system shared by chunks, headings, and page boundaries.
package chunker
