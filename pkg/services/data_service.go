package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"telar-chat-api/pkg/models"
)

// DataService は在庫・売上データを所有する集計レイヤーです。
// 呼び出し元には常にコピーを返し、元データは変更されません。
type DataService struct {
	inventory []models.InventoryRecord
	sales     []models.SalesRecord
}

// NewDataService はサンプルデータを持つ DataService を生成します。
func NewDataService() *DataService {
	return NewDataServiceWith(SampleInventory(), SampleSales())
}

// NewDataServiceWith は指定したレコードで DataService を生成します。
func NewDataServiceWith(inventory []models.InventoryRecord, sales []models.SalesRecord) *DataService {
	return &DataService{
		inventory: append([]models.InventoryRecord(nil), inventory...),
		sales:     append([]models.SalesRecord(nil), sales...),
	}
}

// ListInventory はフィルタに完全一致する在庫レコードを返します。
func (s *DataService) ListInventory(filter models.InventoryFilter) []models.InventoryRecord {
	out := make([]models.InventoryRecord, 0, len(s.inventory))
	for _, r := range s.inventory {
		if filter.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// ListSales は start〜end（両端を含む）の売上を返します。空の境界は無制限です。
func (s *DataService) ListSales(start, end string) ([]models.SalesRecord, error) {
	from, to, err := parseRange(start, end)
	if err != nil {
		return nil, err
	}
	out := make([]models.SalesRecord, 0, len(s.sales))
	for _, r := range s.sales {
		d, err := time.Parse(models.DateLayout, r.Date)
		if err != nil {
			// 日付が壊れたレコードは範囲指定時のみ除外する
			if from.IsZero() && to.IsZero() {
				out = append(out, r)
			}
			continue
		}
		if !from.IsZero() && d.Before(from) {
			continue
		}
		if !to.IsZero() && d.After(to) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func parseRange(start, end string) (from, to time.Time, err error) {
	if start = strings.TrimSpace(start); start != "" {
		if from, err = time.Parse(models.DateLayout, start); err != nil {
			return from, to, fmt.Errorf("%w: start %q", ErrInvalidDateRange, start)
		}
	}
	if end = strings.TrimSpace(end); end != "" {
		if to, err = time.Parse(models.DateLayout, end); err != nil {
			return from, to, fmt.Errorf("%w: end %q", ErrInvalidDateRange, end)
		}
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return from, to, fmt.Errorf("%w: %s is after %s", ErrInvalidDateRange, start, end)
	}
	return from, to, nil
}

// ComputeMetrics は期間内の売上と全在庫からビジネス指標を算出します。
// 結果はキャッシュされず、呼び出しごとに再計算されます。
func (s *DataService) ComputeMetrics(start, end string) (models.BusinessMetrics, error) {
	sales, err := s.ListSales(start, end)
	if err != nil {
		return models.BusinessMetrics{}, err
	}

	byCategory := newGroupSum()
	byRegion := newGroupSum()
	var total float64
	for _, r := range sales {
		total += r.Amount
		byCategory.add(r.Category, r.Amount)
		byRegion.add(r.Region, r.Amount)
	}

	m := models.BusinessMetrics{
		TotalSales:          total,
		TopCategories:       []models.CategorySales{},
		StockLevels:         []models.CategoryStock{},
		RegionalPerformance: []models.RegionSales{},
	}
	// 売上0件のときは平均を0とする
	if len(sales) > 0 {
		m.AverageOrderValue = total / float64(len(sales))
	}
	for _, e := range byCategory.sortedDesc() {
		m.TopCategories = append(m.TopCategories, models.CategorySales{Category: e.key, Sales: e.value})
	}
	for _, e := range byRegion.sortedDesc() {
		m.RegionalPerformance = append(m.RegionalPerformance, models.RegionSales{Region: e.key, Sales: e.value})
	}

	stock := newGroupSum()
	for _, r := range s.inventory {
		stock.add(r.Category, float64(r.Stock))
	}
	for _, e := range stock.entries() {
		m.StockLevels = append(m.StockLevels, models.CategoryStock{Category: e.key, Stock: int(e.value)})
	}
	return m, nil
}

// GenerateReport はレポート種別に応じた生データを返します。
func (s *DataService) GenerateReport(reportType string) (models.Report, error) {
	return s.ReportFor(reportType, nil)
}

// ReportFor は絞り込み条件付きでレポートを生成します。
// start / end は sales と metrics の期間、それ以外のキーは inventory の在庫フィルタとして扱います。
// どの種別でも解釈できないキーや型は ErrInvalidFilter です。
func (s *DataService) ReportFor(reportType string, filters map[string]any) (models.Report, error) {
	t := strings.ToLower(strings.TrimSpace(reportType))
	start, end, rest, err := splitRange(filters)
	if err != nil {
		return models.Report{}, err
	}

	report := models.Report{Type: t}
	switch t {
	case "inventory":
		filter, err := FilterFromMap(rest)
		if err != nil {
			return models.Report{}, err
		}
		report.Inventory = s.ListInventory(filter)
	case "sales", "metrics":
		if len(rest) > 0 {
			keys := make([]string, 0, len(rest))
			for k := range rest {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			return models.Report{}, fmt.Errorf("%w: unknown keys %v for %s report", ErrInvalidFilter, keys, t)
		}
		if t == "sales" {
			sales, err := s.ListSales(start, end)
			if err != nil {
				return models.Report{}, err
			}
			report.Sales = sales
			break
		}
		m, err := s.ComputeMetrics(start, end)
		if err != nil {
			return models.Report{}, err
		}
		report.Metrics = &m
	default:
		return models.Report{}, fmt.Errorf("%w: %q", ErrUnsupportedReportType, reportType)
	}
	return report, nil
}

// splitRange は start / end を取り出し、残りのキーを返します。
// null は未指定として扱います。
func splitRange(filters map[string]any) (start, end string, rest map[string]any, err error) {
	rest = make(map[string]any, len(filters))
	for k, v := range filters {
		if k != "start" && k != "end" {
			rest[k] = v
			continue
		}
		if v == nil {
			continue
		}
		str, ok := v.(string)
		if !ok {
			return "", "", nil, fmt.Errorf("%w: %s must be a date string", ErrInvalidFilter, k)
		}
		if k == "start" {
			start = str
		} else {
			end = str
		}
	}
	return start, end, rest, nil
}

// FilterFromMap は JSON 由来のマップを InventoryFilter に変換します。
// 型変換は行わず、未知のキーや型の不一致は ErrInvalidFilter になります。
func FilterFromMap(m map[string]any) (models.InventoryFilter, error) {
	var f models.InventoryFilter
	for key, raw := range m {
		switch key {
		case "id", "name", "category", "size", "gender":
			v, ok := raw.(string)
			if !ok {
				return models.InventoryFilter{}, fmt.Errorf("%w: %s must be a string", ErrInvalidFilter, key)
			}
			switch key {
			case "id":
				f.ID = &v
			case "name":
				f.Name = &v
			case "category":
				f.Category = &v
			case "size":
				f.Size = &v
			case "gender":
				f.Gender = &v
			}
		case "stock":
			v, ok := asInteger(raw)
			if !ok {
				return models.InventoryFilter{}, fmt.Errorf("%w: stock must be an integer", ErrInvalidFilter)
			}
			f.Stock = &v
		case "price":
			v, ok := asNumber(raw)
			if !ok {
				return models.InventoryFilter{}, fmt.Errorf("%w: price must be a number", ErrInvalidFilter)
			}
			f.Price = &v
		default:
			return models.InventoryFilter{}, fmt.Errorf("%w: unknown key %q", ErrInvalidFilter, key)
		}
	}
	return f, nil
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func asInteger(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}

// groupSum は挿入順を保持するキー別の合計です。
type groupSum struct {
	order []string
	sums  map[string]float64
}

type groupEntry struct {
	key   string
	value float64
}

func newGroupSum() *groupSum {
	return &groupSum{sums: make(map[string]float64)}
}

func (g *groupSum) add(key string, v float64) {
	if _, ok := g.sums[key]; !ok {
		g.order = append(g.order, key)
	}
	g.sums[key] += v
}

func (g *groupSum) entries() []groupEntry {
	out := make([]groupEntry, 0, len(g.order))
	for _, k := range g.order {
		out = append(out, groupEntry{key: k, value: g.sums[k]})
	}
	return out
}

// sortedDesc は値の降順に並べます。同値は最初に出現した順です。
func (g *groupSum) sortedDesc() []groupEntry {
	out := g.entries()
	sort.SliceStable(out, func(i, j int) bool { return out[i].value > out[j].value })
	return out
}
