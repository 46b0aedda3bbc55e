package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the persisted record types. Field order is the wire
// format: changing it, or the encoding of any field, breaks every existing
// database. Append-only evolution requires a version prefix first.
//
// Timestamps are encoded as Unix microseconds.

var (
	IDMUS              = idMUS{}
	EmbeddingRecordMUS = embeddingRecordMUS{}
	JobMUS             = jobMUS{}
	PipelineResultMUS  = pipelineResultMUS{}
)

type idMUS struct{}

func (idMUS) Marshal(v ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(v ID) int {
	return varint.Uint64.Size(uint64(v))
}

type timeMUS struct{}

func (timeMUS) Marshal(v time.Time, bs []byte) int {
	if v.IsZero() {
		return varint.Int64.Marshal(0, bs)
	}
	return varint.Int64.Marshal(v.UnixMicro(), bs)
}

func (timeMUS) Unmarshal(bs []byte) (time.Time, int, error) {
	micros, n, err := varint.Int64.Unmarshal(bs)
	if err != nil || micros == 0 {
		return time.Time{}, n, err
	}
	return time.UnixMicro(micros).UTC(), n, nil
}

func (timeMUS) Size(v time.Time) int {
	if v.IsZero() {
		return varint.Int64.Size(0)
	}
	return varint.Int64.Size(v.UnixMicro())
}

type vectorMUS struct{}

func (vectorMUS) Marshal(v []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return n
}

func (vectorMUS) Unmarshal(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil || length == 0 {
		return nil, n, err
	}
	v = make([]float32, length)
	for i := range v {
		var n1 int
		v[i], n1, err = raw.Float32.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
	}
	return v, n, nil
}

func (vectorMUS) Size(v []float32) (size int) {
	size = varint.Int.Size(len(v))
	for _, f := range v {
		size += raw.Float32.Size(f)
	}
	return size
}

type intsMUS struct{}

func (intsMUS) Marshal(v []int, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, e := range v {
		n += varint.Int.Marshal(e, bs[n:])
	}
	return n
}

func (intsMUS) Unmarshal(bs []byte) (v []int, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil || length == 0 {
		return nil, n, err
	}
	v = make([]int, length)
	for i := range v {
		var n1 int
		v[i], n1, err = varint.Int.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
	}
	return v, n, nil
}

func (intsMUS) Size(v []int) (size int) {
	size = varint.Int.Size(len(v))
	for _, e := range v {
		size += varint.Int.Size(e)
	}
	return size
}

type embeddingRecordMUS struct{}

func (embeddingRecordMUS) Marshal(v EmbeddingRecord, bs []byte) (n int) {
	n = IDMUS.Marshal(v.DocumentID, bs)
	n += varint.Int.Marshal(v.ChunkIndex, bs[n:])
	n += ord.String.Marshal(v.ChunkText, bs[n:])
	n += vectorMUS{}.Marshal(v.Vector, bs[n:])
	n += varint.Int.Marshal(v.PageNumber, bs[n:])
	n += ord.String.Marshal(v.SectionHeading, bs[n:])
	n += varint.Int.Marshal(v.WordCount, bs[n:])
	n += varint.Int.Marshal(v.StartOffset, bs[n:])
	n += varint.Int.Marshal(v.EndOffset, bs[n:])
	n += ord.String.Marshal(v.Model, bs[n:])
	return n
}

func (embeddingRecordMUS) Unmarshal(bs []byte) (v EmbeddingRecord, n int, err error) {
	var n1 int
	v.DocumentID, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return v, n, err
	}
	v.ChunkIndex, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.ChunkText, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Vector, n1, err = vectorMUS{}.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.PageNumber, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.SectionHeading, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.WordCount, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.StartOffset, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.EndOffset, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Model, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return v, n, err
}

func (embeddingRecordMUS) Size(v EmbeddingRecord) (size int) {
	size = IDMUS.Size(v.DocumentID)
	size += varint.Int.Size(v.ChunkIndex)
	size += ord.String.Size(v.ChunkText)
	size += vectorMUS{}.Size(v.Vector)
	size += varint.Int.Size(v.PageNumber)
	size += ord.String.Size(v.SectionHeading)
	size += varint.Int.Size(v.WordCount)
	size += varint.Int.Size(v.StartOffset)
	size += varint.Int.Size(v.EndOffset)
	size += ord.String.Size(v.Model)
	return size
}

type jobMUS struct{}

func (jobMUS) Marshal(v Job, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.DocumentID, bs[n:])
	n += varint.Int.Marshal(int(v.Status), bs[n:])
	n += varint.Int.Marshal(v.Progress, bs[n:])
	n += ord.String.Marshal(v.Message, bs[n:])
	n += ord.String.Marshal(v.ErrorMessage, bs[n:])
	n += timeMUS{}.Marshal(v.CreatedAt, bs[n:])
	n += timeMUS{}.Marshal(v.UpdatedAt, bs[n:])
	n += timeMUS{}.Marshal(v.CompletedAt, bs[n:])
	return n
}

func (jobMUS) Unmarshal(bs []byte) (v Job, n int, err error) {
	var n1 int
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return v, n, err
	}
	v.DocumentID, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	var status int
	status, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Status = JobStatus(status)
	v.Progress, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Message, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.ErrorMessage, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.CreatedAt, n1, err = timeMUS{}.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.UpdatedAt, n1, err = timeMUS{}.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.CompletedAt, n1, err = timeMUS{}.Unmarshal(bs[n:])
	n += n1
	return v, n, err
}

func (jobMUS) Size(v Job) (size int) {
	size = IDMUS.Size(v.Id)
	size += IDMUS.Size(v.DocumentID)
	size += varint.Int.Size(int(v.Status))
	size += varint.Int.Size(v.Progress)
	size += ord.String.Size(v.Message)
	size += ord.String.Size(v.ErrorMessage)
	size += timeMUS{}.Size(v.CreatedAt)
	size += timeMUS{}.Size(v.UpdatedAt)
	size += timeMUS{}.Size(v.CompletedAt)
	return size
}

type sectionMUS struct{}

func (sectionMUS) Marshal(v SynthesizedSection, bs []byte) (n int) {
	n = ord.String.Marshal(v.Title, bs)
	n += varint.Int.Marshal(v.Order, bs[n:])
	n += ord.String.Marshal(v.Content, bs[n:])
	n += varint.Int.Marshal(v.SourceChunkCount, bs[n:])
	n += intsMUS{}.Marshal(v.PagesReferenced, bs[n:])
	n += varint.Int.Marshal(v.WordCount, bs[n:])
	n += timeMUS{}.Marshal(v.GeneratedAt, bs[n:])
	return n
}

func (sectionMUS) Unmarshal(bs []byte) (v SynthesizedSection, n int, err error) {
	var n1 int
	v.Title, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return v, n, err
	}
	v.Order, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Content, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.SourceChunkCount, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.PagesReferenced, n1, err = intsMUS{}.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.WordCount, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.GeneratedAt, n1, err = timeMUS{}.Unmarshal(bs[n:])
	n += n1
	return v, n, err
}

func (sectionMUS) Size(v SynthesizedSection) (size int) {
	size = ord.String.Size(v.Title)
	size += varint.Int.Size(v.Order)
	size += ord.String.Size(v.Content)
	size += varint.Int.Size(v.SourceChunkCount)
	size += intsMUS{}.Size(v.PagesReferenced)
	size += varint.Int.Size(v.WordCount)
	size += timeMUS{}.Size(v.GeneratedAt)
	return size
}

type metadataMUS struct{}

func (metadataMUS) Marshal(v ResultMetadata, bs []byte) (n int) {
	n = varint.Int.Marshal(v.TotalPages, bs)
	n += varint.Int.Marshal(v.TotalWords, bs[n:])
	n += varint.Int.Marshal(v.TotalChunks, bs[n:])
	n += varint.Int.Marshal(v.EmbeddingCount, bs[n:])
	n += raw.Float64.Marshal(v.DurationSeconds, bs[n:])
	return n
}

func (metadataMUS) Unmarshal(bs []byte) (v ResultMetadata, n int, err error) {
	var n1 int
	v.TotalPages, n, err = varint.Int.Unmarshal(bs)
	if err != nil {
		return v, n, err
	}
	v.TotalWords, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.TotalChunks, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.EmbeddingCount, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.DurationSeconds, n1, err = raw.Float64.Unmarshal(bs[n:])
	n += n1
	return v, n, err
}

func (metadataMUS) Size(v ResultMetadata) (size int) {
	size = varint.Int.Size(v.TotalPages)
	size += varint.Int.Size(v.TotalWords)
	size += varint.Int.Size(v.TotalChunks)
	size += varint.Int.Size(v.EmbeddingCount)
	size += raw.Float64.Size(v.DurationSeconds)
	return size
}

type pipelineResultMUS struct{}

func (pipelineResultMUS) Marshal(v PipelineResult, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.DocumentID, bs[n:])
	n += ord.String.Marshal(v.TemplateName, bs[n:])
	n += IDMUS.Marshal(v.JobID, bs[n:])
	n += varint.Int.Marshal(int(v.Status), bs[n:])
	n += varint.Int.Marshal(len(v.Sections), bs[n:])
	for _, s := range v.Sections {
		n += sectionMUS{}.Marshal(s, bs[n:])
	}
	n += metadataMUS{}.Marshal(v.Metadata, bs[n:])
	n += ord.String.Marshal(v.ErrorMessage, bs[n:])
	n += timeMUS{}.Marshal(v.StartedAt, bs[n:])
	n += timeMUS{}.Marshal(v.CompletedAt, bs[n:])
	n += timeMUS{}.Marshal(v.UpdatedAt, bs[n:])
	return n
}

func (pipelineResultMUS) Unmarshal(bs []byte) (v PipelineResult, n int, err error) {
	var n1 int
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return v, n, err
	}
	v.DocumentID, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.TemplateName, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.JobID, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	var status int
	status, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Status = ResultStatus(status)
	var count int
	count, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	if count > 0 {
		v.Sections = make([]SynthesizedSection, count)
		for i := range v.Sections {
			v.Sections[i], n1, err = sectionMUS{}.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return v, n, err
			}
		}
	}
	v.Metadata, n1, err = metadataMUS{}.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.ErrorMessage, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.StartedAt, n1, err = timeMUS{}.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.CompletedAt, n1, err = timeMUS{}.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.UpdatedAt, n1, err = timeMUS{}.Unmarshal(bs[n:])
	n += n1
	return v, n, err
}

func (pipelineResultMUS) Size(v PipelineResult) (size int) {
	size = IDMUS.Size(v.Id)
	size += IDMUS.Size(v.DocumentID)
	size += ord.String.Size(v.TemplateName)
	size += IDMUS.Size(v.JobID)
	size += varint.Int.Size(int(v.Status))
	size += varint.Int.Size(len(v.Sections))
	for _, s := range v.Sections {
		size += sectionMUS{}.Size(s)
	}
	size += metadataMUS{}.Size(v.Metadata)
	size += ord.String.Size(v.ErrorMessage)
	size += timeMUS{}.Size(v.StartedAt)
	size += timeMUS{}.Size(v.CompletedAt)
	size += timeMUS{}.Size(v.UpdatedAt)
	return size
}
