package recommend

import (
	"context"
	"fmt"

	"github.com/pinecone-io/go-pinecone/v2/pinecone"
	"github.com/sirupsen/logrus"
	"google.golang.org/protobuf/types/known/structpb"

	"clinic-app-server/internal/models"
)

// Retrieval-style prefixes distinguishing the two sides of an asymmetric
// similarity search.
const (
	queryPrefix   = "query: "
	passagePrefix = "passage: "
)

// PineconeStore is the vector-search collaborator backed by a Pinecone
// index with integrated inference embeddings. It implements Searcher and
// keeps the index in sync with doctor-profile mutations.
type PineconeStore struct {
	client     *pinecone.Client
	index      *pinecone.IndexConnection
	embedModel string
	logger     *logrus.Logger
}

// NewPineconeStore connects to an existing index. indexName must already
// exist; the caller decides whether a connection failure disables the
// feature or aborts startup.
func NewPineconeStore(ctx context.Context, apiKey, indexName, namespace, embedModel string, logger *logrus.Logger) (*PineconeStore, error) {
	client, err := pinecone.NewClient(pinecone.NewClientParams{ApiKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("creating pinecone client: %w", err)
	}

	idx, err := client.DescribeIndex(ctx, indexName)
	if err != nil {
		return nil, fmt.Errorf("describing index %q: %w", indexName, err)
	}

	index, err := client.Index(pinecone.NewIndexConnParams{Host: idx.Host, Namespace: namespace})
	if err != nil {
		return nil, fmt.Errorf("connecting to index %q: %w", indexName, err)
	}

	return &PineconeStore{
		client:     client,
		index:      index,
		embedModel: embedModel,
		logger:     logger,
	}, nil
}

// Search embeds the prefixed query and returns up to k ranked matches
// with the specialization carried in each document's metadata.
func (p *PineconeStore) Search(ctx context.Context, query string, k int) ([]Match, error) {
	vector, err := p.embed(ctx, queryPrefix+query, "query")
	if err != nil {
		return nil, err
	}

	resp, err := p.index.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
		Vector:          vector,
		TopK:            uint32(k),
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}

	matches := make([]Match, 0, len(resp.Matches))
	for _, scored := range resp.Matches {
		if scored.Vector == nil || scored.Vector.Metadata == nil {
			continue
		}
		meta := scored.Vector.Metadata.AsMap()
		spec, _ := meta["specialization"].(string)
		doctorID, _ := meta["doctor_id"].(string)
		if spec == "" {
			continue
		}
		matches = append(matches, Match{
			DoctorID:       doctorID,
			Specialization: spec,
			Score:          float64(scored.Score),
		})
	}
	return matches, nil
}

// UpsertDoctor writes the doctor's document into the index, or removes
// it when the doctor is deactivated.
func (p *PineconeStore) UpsertDoctor(ctx context.Context, doctor *models.Doctor) error {
	if !doctor.IsActive {
		return p.DeleteDoctor(ctx, doctor.ID)
	}

	passage := passagePrefix + BuildPassage(doctor.Specialization)
	vector, err := p.embed(ctx, passage, "passage")
	if err != nil {
		return err
	}

	metadata, err := structpb.NewStruct(map[string]interface{}{
		"doctor_id":      doctor.ID,
		"name":           doctor.User.FullName(),
		"specialization": doctor.Specialization,
	})
	if err != nil {
		return fmt.Errorf("building metadata: %w", err)
	}

	_, err = p.index.UpsertVectors(ctx, []*pinecone.Vector{{
		Id:       doctor.ID,
		Values:   vector,
		Metadata: metadata,
	}})
	if err != nil {
		return fmt.Errorf("upserting doctor %s: %w", doctor.ID, err)
	}
	return nil
}

// DeleteDoctor removes a doctor's document from the index.
func (p *PineconeStore) DeleteDoctor(ctx context.Context, doctorID string) error {
	if err := p.index.DeleteVectorsById(ctx, []string{doctorID}); err != nil {
		return fmt.Errorf("deleting doctor %s from index: %w", doctorID, err)
	}
	return nil
}

func (p *PineconeStore) embed(ctx context.Context, text, inputType string) ([]float32, error) {
	truncate := "END"
	resp, err := p.client.Inference.Embed(ctx, &pinecone.EmbedRequest{
		Model:      p.embedModel,
		TextInputs: []string{text},
		Parameters: pinecone.EmbedParameters{
			InputType: inputType,
			Truncate:  truncate,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("embedding text: %w", err)
	}
	if resp == nil || len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding response empty")
	}
	values := resp.Data[0].Values
	if values == nil {
		return nil, fmt.Errorf("embedding response missing values")
	}
	return *values, nil
}
