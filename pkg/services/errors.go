package services

import "errors"

var (
	// ErrUnsupportedReportType は inventory / sales / metrics 以外のレポート種別です。
	ErrUnsupportedReportType = errors.New("unsupported report type")
	// ErrInvalidDateRange は日付の形式が不正、または開始日が終了日より後の場合です。
	ErrInvalidDateRange = errors.New("invalid date range")
	// ErrInvalidFilter は未知のキーや型の合わない値を含む在庫フィルタです。
	ErrInvalidFilter = errors.New("invalid inventory filter")
	// ErrEmptyMessage は空のユーザーメッセージです。
	ErrEmptyMessage = errors.New("message is empty")
)
