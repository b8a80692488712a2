package domain

// AbstentionAnswer is the single grounding-failure signal. Empty
// retrieval, empty generation and hedged answers all collapse to this
// exact string.
const AbstentionAnswer = "I don't know based on the provided text."

// Chunk is a bounded token-window slice of a source document. The ID is
// generated at chunk time and is independent of content and position.
type Chunk struct {
	ID       string `json:"chunk_id"`
	Position int    `json:"chunk_position"`
	Text     string `json:"text"`
	Source   string `json:"source"`
}

// StoredChunk is a persisted chunk row together with its embedding.
// RowID is assigned by the store; rows are append-only.
type StoredChunk struct {
	RowID     int64
	Source    string
	ChunkID   string
	Position  int
	Content   string
	Embedding []float32
}

// RetrievedChunk is a stored chunk scored against one query. Similarity
// is cosine in [-1, 1] on the fallback path, or whatever the store's
// native search assigns on the primary path.
type RetrievedChunk struct {
	RowID      int64   `json:"id"`
	Source     string  `json:"source"`
	ChunkID    string  `json:"chunk_id"`
	Position   int     `json:"chunk_position"`
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity"`
}

// RerankedChunk carries the rerank backend's relevance score. The order
// of a reranked slice is authoritative for generation and citations.
type RerankedChunk struct {
	RetrievedChunk
	RerankScore float64 `json:"rerank_score"`
}

// Citation is a 1-based renumbering of the reranked sequence.
type Citation struct {
	ID       int    `json:"id"`
	Source   string `json:"source"`
	ChunkID  string `json:"chunk_id"`
	Position int    `json:"chunk_position"`
}

type IngestTimings struct {
	ChunkingMS  float64 `json:"chunking_ms"`
	EmbeddingMS float64 `json:"embedding_ms"`
	InsertMS    float64 `json:"insert_ms"`
}

type QueryTimings struct {
	EmbeddingMS  float64 `json:"embedding_ms"`
	RetrievalMS  float64 `json:"retrieval_ms"`
	RerankMS     float64 `json:"rerank_ms"`
	GenerationMS float64 `json:"generation_ms"`
}

type IngestResult struct {
	ChunksInserted int           `json:"chunks_inserted"`
	TokenEstimate  int           `json:"token_estimate"`
	Timings        IngestTimings `json:"timings"`
}

type QueryResult struct {
	Answer          string          `json:"answer"`
	Citations       []Citation      `json:"citations"`
	Timings         QueryTimings    `json:"timings"`
	TokenEstimate   int             `json:"token_estimate"`
	RetrievedChunks []RerankedChunk `json:"retrieved_chunks"`
}
