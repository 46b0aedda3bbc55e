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


// Package openai implements the ai interfaces using OpenAI-compatible APIs.
//
// The implementation works with any service exposing the OpenAI wire format,
// including Ollama, LocalAI, vLLM, and OpenAI itself. Embedding and
// completion hosts are configured independently so the two workloads can be
// served by different backends.
//
// All failures are classified into the ai failure taxonomy (timeout, rate
// limit, provider error) before being returned, so retry policy can be
// applied uniformly by callers.
package openai
