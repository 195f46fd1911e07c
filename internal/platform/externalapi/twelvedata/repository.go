package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"signal_backend/internal/feature/analysis/usecase"
	"signal_backend/internal/feature/candles/domain/entity"
	"signal_backend/internal/platform/externalapi/twelvedata/dto"
	"signal_backend/internal/shared/apperr"
)

// codeTooManyRequests はAPIのレート制限エラーです。再試行で回復するため DataUnavailable にはしません。
const codeTooManyRequests = 429

// TwelveDataMarket はTwelve Data外部APIからローソク足を取得するMarketRepository実装です。
type TwelveDataMarket struct {
	cfg    Config
	client *http.Client
}

// TwelveDataMarketがMarketRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.MarketRepository = (*TwelveDataMarket)(nil)

// NewTwelveDataMarket は指定された設定とHTTPクライアントでTwelveDataMarketの新しいインスタンスを生成します。
func NewTwelveDataMarket(cfg Config, client *http.Client) *TwelveDataMarket {
	return &TwelveDataMarket{cfg: cfg, client: client}
}

// GetTimeSeries はTwelve Data APIから時系列データを取得し、古い順の domain.Candle のスライスとして返します。
func (t *TwelveDataMarket) GetTimeSeries(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Candle, error) {
	q := url.Values{}
	// クエリパラメータを追加
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	q.Set("outputsize", strconv.Itoa(outputsize))
	q.Set("timezone", "UTC")
	q.Set("apikey", t.cfg.TwelveDataAPIKey)

	// URLを生成
	u := fmt.Sprintf("%s/time_series?%s", t.cfg.baseURL(), q.Encode())

	// リクエストオブジェクトを作成
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	// リクエストを実行
	res, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close response body")
		}
	}()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("twelvedata http %d", res.StatusCode)
	}

	// JSONレスポンスをDTOにデコード
	var body dto.TimeSeriesResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, err
	}
	if body.Status == "error" {
		if body.Code == codeTooManyRequests {
			return nil, fmt.Errorf("twelvedata: %s", body.Message)
		}
		// 不明なシンボルなど、再試行しても変わらないエラー
		return nil, fmt.Errorf("%w: twelvedata: %s", apperr.ErrDataUnavailable, body.Message)
	}

	candles := make([]entity.Candle, len(body.Values))
	for i, v := range body.Values {

		// タイムスタンプをパース
		tm, err := time.ParseInLocation("2006-01-02 15:04:05", v.Datetime, time.UTC)
		if err != nil {
			tm, err = time.ParseInLocation("2006-01-02", v.Datetime, time.UTC)
			if err != nil {
				return nil, fmt.Errorf("parse time %q: %w", v.Datetime, err)
			}
		}
		// 始値をパース
		o, err := strconv.ParseFloat(v.Open, 64)
		if err != nil {
			return nil, fmt.Errorf("parse open %q: %w", v.Open, err)
		}
		// 高値をパース
		h, err := strconv.ParseFloat(v.High, 64)
		if err != nil {
			return nil, fmt.Errorf("parse high %q: %w", v.High, err)
		}
		// 安値をパース
		l, err := strconv.ParseFloat(v.Low, 64)
		if err != nil {
			return nil, fmt.Errorf("parse low %q: %w", v.Low, err)
		}
		// 終値をパース
		c, err := strconv.ParseFloat(v.Close, 64)
		if err != nil {
			return nil, fmt.Errorf("parse close %q: %w", v.Close, err)
		}
		// 出来高をパース（省略時は0）
		var vol float64
		if v.Volume != "" {
			vol, err = strconv.ParseFloat(v.Volume, 64)
			if err != nil {
				return nil, fmt.Errorf("parse volume %q: %w", v.Volume, err)
			}
		}

		// 新しい順で返るため、古い順に詰め直す
		candles[len(body.Values)-1-i] = entity.Candle{
			Symbol:   symbol,
			Interval: interval,
			Time:     tm,
			Open:     o,
			High:     h,
			Low:      l,
			Close:    c,
			Volume:   vol,
		}
	}
	return candles, nil
}
