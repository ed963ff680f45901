package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/yeisme/audiovault/pkg/internal/model"
	"github.com/yeisme/audiovault/pkg/internal/service"
)

func TestReconcile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	kept, err := f.svc.Upload(ctx, input("kept.mp3", "audio/mpeg", []byte("kept")), baseURL)
	if err != nil {
		t.Fatal(err)
	}

	lost, err := f.svc.Upload(ctx, input("lost.mp3", "audio/mpeg", []byte("lost")), baseURL)
	if err != nil {
		t.Fatal(err)
	}

	if err := f.blob.Delete(ctx, lost.Filename); err != nil {
		t.Fatal(err)
	}

	if _, err := f.blob.Put(ctx, "stray.mp3", strings.NewReader("stray")); err != nil {
		t.Fatal(err)
	}

	// 未超过宽限期，什么都不处理
	res, err := f.svc.Reconcile(ctx, service.ReconcileOptions{Grace: time.Hour, PruneMetadata: true})
	if err != nil {
		t.Fatal(err)
	}

	if len(res.OrphanBlobs) != 0 || len(res.MissingBlobs) != 0 {
		t.Fatalf("within grace: %+v", res)
	}

	service.SetClock(f.svc, func() time.Time { return time.Now().Add(2 * time.Hour) })

	res, err = f.svc.Reconcile(ctx, service.ReconcileOptions{Grace: time.Hour, DryRun: true, PruneMetadata: true})
	if err != nil {
		t.Fatal(err)
	}

	if res.Blobs != 2 || res.Records != 2 {
		t.Fatalf("counts = %d blobs, %d records", res.Blobs, res.Records)
	}

	if len(res.OrphanBlobs) != 1 || res.OrphanBlobs[0] != "stray.mp3" || len(res.RemovedBlobs) != 0 {
		t.Fatalf("dry run orphans = %+v", res)
	}

	if len(res.MissingBlobs) != 1 || res.MissingBlobs[0] != lost.Filename || len(res.PrunedRecordIDs) != 0 {
		t.Fatalf("dry run missing = %+v", res)
	}

	if keys := blobKeys(t, f.blob); len(keys) != 2 {
		t.Fatalf("dry run changed blobs: %v", keys)
	}

	res, err = f.svc.Reconcile(ctx, service.ReconcileOptions{Grace: time.Hour, PruneMetadata: true})
	if err != nil {
		t.Fatal(err)
	}

	if len(res.RemovedBlobs) != 1 || len(res.PrunedRecordIDs) != 1 || res.PrunedRecordIDs[0] != lost.ID {
		t.Fatalf("reconcile = %+v", res)
	}

	keys := blobKeys(t, f.blob)
	if len(keys) != 1 || keys[0] != kept.Filename {
		t.Fatalf("blobs = %v", keys)
	}

	recs, _ := f.meta.List(ctx)
	if len(recs) != 1 || recs[0].UUID != kept.UUID {
		t.Fatalf("records = %+v", recs)
	}
}

func TestReconcileKeepsMetadataByDefault(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	rec := &model.AudioFile{
		Filename:         "6f1c2a44-5d0e-4b8f-9a51-7b8c3d2e1f00.mp3",
		OriginalFilename: "ghost.mp3",
		FileSize:         3,
		MimeType:         "audio/mpeg",
		UUID:             "6f1c2a44-5d0e-4b8f-9a51-7b8c3d2e1f00",
	}
	if err := f.meta.Insert(ctx, rec); err != nil {
		t.Fatal(err)
	}

	service.SetClock(f.svc, func() time.Time { return time.Now().Add(time.Minute) })

	res, err := f.svc.Reconcile(ctx, service.ReconcileOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if len(res.MissingBlobs) != 1 || len(res.PrunedRecordIDs) != 0 {
		t.Fatalf("res = %+v", res)
	}

	if _, err := f.meta.GetByID(ctx, rec.ID); err != nil {
		t.Fatalf("record pruned: %v", err)
	}
}
