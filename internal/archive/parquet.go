package archive

import (
	"fmt"
	"strings"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"
)

// Reader loads archive files from the local filesystem.
type Reader struct {
	// Parallelism is the number of goroutines parquet-go uses to decode columns.
	Parallelism int64
}

// NewReader creates a Reader with default parallelism.
func NewReader() *Reader {
	return &Reader{Parallelism: 4}
}

// ReadSeries reads every row and the date stamps from the file at path.
func (r *Reader) ReadSeries(path string) (Series, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return Series{}, fmt.Errorf("open archive %s: %w", path, err)
	}
	defer fr.Close()

	np := r.Parallelism
	if np < 1 {
		np = 1
	}
	pr, err := reader.NewParquetReader(fr, new(Sample), np)
	if err != nil {
		return Series{}, fmt.Errorf("create parquet reader for %s: %w", path, err)
	}
	defer pr.ReadStop()

	dates, err := datesFromFooter(pr.Footer)
	if err != nil {
		return Series{}, fmt.Errorf("%s: %w", path, err)
	}

	n := int(pr.GetNumRows())
	samples := make([]Sample, n)
	if n > 0 {
		if err := pr.Read(&samples); err != nil {
			return Series{}, fmt.Errorf("read rows from %s: %w", path, err)
		}
	}

	rows := make([][2]float64, len(samples))
	for i, s := range samples {
		rows[i] = [2]float64{s.VWAPPct, s.DollarVol}
	}

	return Series{Rows: rows, Dates: dates}, nil
}

// WriteSeries writes s to path in the archive layout.
func WriteSeries(path string, s Series) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}
	defer fw.Close()

	pw, err := writer.NewParquetWriter(fw, new(Sample), 4)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, row := range s.Rows {
		if err := pw.Write(Sample{VWAPPct: row[0], DollarVol: row[1]}); err != nil {
			return fmt.Errorf("failed to write parquet data: %w", err)
		}
	}

	dates := strings.Join(s.Dates, ",")
	pw.Footer.KeyValueMetadata = append(pw.Footer.KeyValueMetadata, &parquet.KeyValue{
		Key:   DatesKey,
		Value: &dates,
	})

	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

func datesFromFooter(footer *parquet.FileMetaData) ([]string, error) {
	if footer == nil {
		return nil, fmt.Errorf("missing parquet footer")
	}
	for _, kv := range footer.KeyValueMetadata {
		if kv == nil || kv.Key != DatesKey {
			continue
		}
		if kv.Value == nil || *kv.Value == "" {
			return nil, nil
		}
		parts := strings.Split(*kv.Value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, nil
	}
	return nil, fmt.Errorf("missing %q metadata", DatesKey)
}
