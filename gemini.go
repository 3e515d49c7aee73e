package main

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"

	"github.com/bodul/xwplay/xword"
)

const scanPrompt = `Analyse cette photo de grille de mots croisés (style américain : cases noires, cases numérotées, définitions horizontales et verticales).
La photo doit montrer la grille remplie avec sa solution.

Extrais la grille au format JSON suivant :
{
  "title": "<titre s'il est imprimé, sinon vide>",
  "size": {"rows": <nombre de lignes>, "cols": <nombre de colonnes>},
  "grid": ["A", "B", ".", ...],
  "gridnums": [1, 2, 0, ...],
  "clues": {
    "across": ["1. Définition", "4. Définition", ...],
    "down": ["1. Définition", "2. Définition", ...]
  }
}

Règles :
- "grid" et "gridnums" listent les cases ligne par ligne, de gauche à droite, soit rows × cols éléments.
- Une case noire vaut "." dans "grid" et 0 dans "gridnums".
- Une case blanche contient exactement une lettre ou un chiffre : la solution imprimée dans la case.
- "gridnums" contient le numéro imprimé dans le coin de la case, ou 0.
- Chaque définition commence par son numéro suivi d'un point.
- Réponds UNIQUEMENT avec le JSON, sans commentaire ni markdown.`

var stringList = &genai.Schema{
	Type:  genai.TypeArray,
	Items: &genai.Schema{Type: genai.TypeString},
}

// scanSchema constrains the model output to the puzzle input format.
var scanSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title": {Type: genai.TypeString},
		"size": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"rows": {Type: genai.TypeInteger},
				"cols": {Type: genai.TypeInteger},
			},
			Required: []string{"rows", "cols"},
		},
		"grid": stringList,
		"gridnums": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeInteger},
		},
		"clues": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"across": stringList,
				"down":   stringList,
			},
			Required: []string{"across", "down"},
		},
	},
	Required: []string{"size", "grid", "gridnums", "clues"},
}

// ScanPuzzle sends a photo to Gemini and returns the puzzle it reads. The
// result is not validated; pass it to xword.Load.
func (g *GeminiClient) ScanPuzzle(ctx context.Context, imageData []byte, mimeType string) (*xword.Raw, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.modelName,
		[]*genai.Content{{
			Role: "user",
			Parts: []*genai.Part{
				{Text: scanPrompt},
				{InlineData: &genai.Blob{MIMEType: mimeType, Data: imageData}},
			},
		}},
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr(float32(0.1)),
			TopP:             genai.Ptr(float32(1)),
			ResponseMIMEType: "application/json",
			ResponseSchema:   scanSchema,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	return parseScan(resp.Text())
}

// parseScan decodes the model answer and checks its shape.
func parseScan(text string) (*xword.Raw, error) {
	if text == "" {
		return nil, fmt.Errorf("empty gemini response")
	}

	var raw xword.Raw
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("parse puzzle JSON: %w\nraw response: %s", err, text)
	}

	n := raw.Size.Rows * raw.Size.Cols
	if n == 0 || len(raw.Grid) != n || len(raw.Gridnums) != n {
		return nil, fmt.Errorf("invalid puzzle: %dx%d with %d squares and %d numbers",
			raw.Size.Rows, raw.Size.Cols, len(raw.Grid), len(raw.Gridnums))
	}

	return &raw, nil
}
