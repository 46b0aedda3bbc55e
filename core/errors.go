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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidStrategy indicates a ProcessingStrategy failed validation.
	ErrInvalidStrategy = errors.New("invalid processing strategy")

	// ErrInvalidTemplate indicates a Template failed validation.
	ErrInvalidTemplate = errors.New("invalid template")

	// ErrInvalidSection indicates a TemplateSection failed validation.
	ErrInvalidSection = errors.New("invalid template section")

	// ErrEmptyDocument indicates a document contains no extractable text.
	ErrEmptyDocument = errors.New("document contains no text")

	// ErrEmptyTitle indicates a section Title field is empty.
	ErrEmptyTitle = errors.New("section title cannot be empty")

	// ErrEmptyGuidance indicates a section GuidancePrompt field is empty.
	ErrEmptyGuidance = errors.New("section guidance prompt cannot be empty")

	// ErrInvalidProgress indicates a job progress value outside [0, 100].
	ErrInvalidProgress = errors.New("progress must be between 0 and 100")

	// ErrInvalidJobStatus indicates an invalid JobStatus value.
	ErrInvalidJobStatus = errors.New("invalid job status")
)
