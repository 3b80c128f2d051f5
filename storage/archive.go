package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// BracketArchiver сохраняет снимок сетки в объектное хранилище перед
// регенерацией. Регенерация уничтожает внесённые результаты, и архив -
// единственный способ их восстановить.
type BracketArchiver struct {
	uploader FileUploader
}

func NewBracketArchiver(uploader FileUploader) *BracketArchiver {
	return &BracketArchiver{uploader: uploader}
}

// Archive сериализует снимок и кладёт его под ключ с меткой времени,
// чтобы повторные регенерации не затирали друг друга.
func (a *BracketArchiver) Archive(ctx context.Context, stopID int, snapshot interface{}) (string, error) {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal bracket snapshot for stop %d: %w", stopID, err)
	}

	key := fmt.Sprintf("bracket-archives/stop-%d/%s.json", stopID, time.Now().UTC().Format("20060102T150405Z"))
	result, err := a.uploader.Upload(ctx, key, "application/json", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to upload bracket archive %s: %w", key, err)
	}
	return result.Location, nil
}
