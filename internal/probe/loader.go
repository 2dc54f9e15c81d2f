package probe

import (
	"context"
	"fmt"

	"metaprobe/internal/datasource/file"
	csvparser "metaprobe/internal/parser/csv"
	htmlparser "metaprobe/internal/parser/html"
	jsonparser "metaprobe/internal/parser/json"
)

// LoadRecords reads the whole input into memory. The file is closed on
// every path.
func LoadRecords(ctx context.Context, in InputSpec, rf ResolvedFormat, header bool) (*Loaded, error) {
	rc, err := file.NewLocal(in.Path).WithEncoding(in.Encoding).Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	switch rf.Kind {
	case FormatJSON:
		recs, err := jsonparser.ReadArray(ctx, rc, jsonparser.Options{FlattenNested: in.FlattenNested})
		if err != nil {
			return nil, err
		}
		return &Loaded{Records: recs}, nil

	case FormatTabular:
		tbl, err := csvparser.ReadRows(ctx, rc, csvparser.Options{Comma: rf.Separator, HasHeader: header})
		if err != nil {
			return nil, err
		}
		return &Loaded{Records: tbl.Records, Columns: tbl.Columns}, nil

	case FormatHTML:
		tbl, err := htmlparser.ReadTable(ctx, rc, htmlparser.Options{HasHeader: header})
		if err != nil {
			return nil, err
		}
		return &Loaded{Records: tbl.Records, Columns: tbl.Columns}, nil

	default:
		panic(fmt.Sprintf("probe: unhandled format %q", rf.Kind))
	}
}
