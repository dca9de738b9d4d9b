package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/repository/catalog"
)

// CSVImporter reads flattened catalog CSV exports and upserts products
// with their variants. Rows with a slug start a new product; rows without
// one append variants or images to the product currently being read.
type CSVImporter struct {
	reader *csv.Reader
	writer catalog.Writer
}

func NewCSVImporter(r io.Reader, writer catalog.Writer) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{reader: csvr, writer: writer}
}

type csvRow struct {
	Slug        string
	Name        string
	Desc        string
	ImageURL    string
	PriceID     string
	Cents       int64
	Currency    string
	OptionKey   string
	OptionValue string
	OptionColor string
}

type pendingProduct struct {
	product  domain.Product
	variants []domain.ProductVariant
}

// Run parses CSV rows and upserts products grouped by slug. It returns
// the number of products written.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	var (
		current  *pendingProduct
		imported int
	)

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		row := parseRow(record, index)
		if row == nil {
			continue
		}

		if row.Slug != "" {
			if current != nil {
				if err := i.save(ctx, current); err != nil {
					return imported, err
				}
				imported++
			}
			current = &pendingProduct{product: domain.Product{
				Slug:        domain.Slugify(row.Slug),
				Name:        row.Name,
				Description: row.Desc,
			}}
		}
		if current == nil {
			continue
		}

		if row.ImageURL != "" {
			current.product.Images = append(current.product.Images, row.ImageURL)
		}
		if row.PriceID != "" {
			current.variants = append(current.variants, variantFromRow(row))
		}
	}

	if current != nil {
		if err := i.save(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

func variantFromRow(row *csvRow) domain.ProductVariant {
	v := domain.ProductVariant{
		ID:    row.PriceID,
		Price: domain.Money{Amount: row.Cents, Currency: row.Currency},
	}
	if row.OptionKey != "" {
		opt := domain.VariantOption{
			Key:   row.OptionKey,
			Value: row.OptionValue,
			Type:  domain.OptionString,
		}
		if row.OptionColor != "" {
			opt.Type = domain.OptionColor
			opt.ColorValue = row.OptionColor
		}
		v.Options = []domain.VariantOption{domain.NormalizeOption(opt)}
	}
	return v
}

func (i *CSVImporter) save(ctx context.Context, p *pendingProduct) error {
	if p.product.Name == "" || len(p.variants) == 0 {
		return fmt.Errorf("invalid product row (missing name or variants) for slug %q", p.product.Slug)
	}
	for _, v := range p.variants {
		if v.ID == "" || v.Price.Amount <= 0 || !domain.ValidCurrency(v.Price.Currency) {
			return fmt.Errorf("invalid variant %q for slug %q", v.ID, p.product.Slug)
		}
	}

	stored, err := i.writer.UpsertProduct(ctx, p.product)
	if err != nil {
		return fmt.Errorf("upsert product %q: %w", p.product.Slug, err)
	}
	for _, v := range p.variants {
		if err := i.writer.UpsertVariant(ctx, stored.ID, v); err != nil {
			return fmt.Errorf("upsert variant %q: %w", v.ID, err)
		}
	}
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[h] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) *csvRow {
	row := &csvRow{
		Slug:        pick(record, index, "slug"),
		Name:        pick(record, index, "name"),
		Desc:        pick(record, index, "description"),
		ImageURL:    pick(record, index, "images.url"),
		PriceID:     pick(record, index, "variants.priceId"),
		Currency:    pick(record, index, "variants.currency"),
		OptionKey:   pick(record, index, "variants.option.key"),
		OptionValue: pick(record, index, "variants.option.value"),
		OptionColor: pick(record, index, "variants.option.color"),
	}
	if centStr := pick(record, index, "variants.priceCents"); centStr != "" {
		row.Cents, _ = strconv.ParseInt(centStr, 10, 64)
	}
	if row.Slug == "" && row.ImageURL == "" && row.PriceID == "" {
		return nil
	}
	return row
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
