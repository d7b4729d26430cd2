package backtester

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/algotrader-go/algotrader/common"
)

// Print writes a human readable summary of the run
func (r *Report) Print(w io.Writer) error {
	if r == nil {
		return fmt.Errorf("%w: report", common.ErrNilPointer)
	}
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "Trade\t%s\n", r.TradeID)
	fmt.Fprintf(tw, "Pair\t%s/%s\n", r.TargetSymbol, r.TradingSymbol)
	fmt.Fprintf(tw, "Opened\t%s at %s\n", r.Amount, r.OpenPrice)
	fmt.Fprintf(tw, "Ticks processed\t%d\n", r.TicksProcessed)
	if r.Cancelled {
		fmt.Fprintln(tw, "Cancelled\ttrue")
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "Time\tRule\tPrice\tAmount\tOrder")
	for i := range r.Executions {
		e := &r.Executions[i]
		ref := ""
		if e.Order != nil {
			ref = e.Order.GetReferenceID()
		}
		fmt.Fprintf(tw, "%s\t%s %s\t%s\t%s\t%s\n",
			e.Time.UTC().Format(time.RFC3339), e.RiskType, e.Kind, e.Price, e.Amount, ref)
	}
	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "Realised\t%s %s\n", r.Realised.StringFixed(8), r.TradingSymbol)
	fmt.Fprintf(tw, "Fees\t%s %s\n", r.Fees.StringFixed(8), r.TradingSymbol)
	fmt.Fprintf(tw, "Remaining\t%s %s\n", r.Remaining, r.TargetSymbol)
	fmt.Fprintf(tw, "Last price\t%s\n", r.LastPrice)
	fmt.Fprintf(tw, "Unrealised value\t%s %s\n", r.UnrealisedValue.StringFixed(8), r.TradingSymbol)
	fmt.Fprintf(tw, "Net profit\t%s %s\n", r.NetProfit.StringFixed(8), r.TradingSymbol)
	fmt.Fprintf(tw, "Return\t%s%%\n", r.Return.StringFixed(2))
	for i := range r.Rules {
		st := &r.Rules[i]
		hwm := "unset"
		if st.HighWaterMark.Valid {
			hwm = st.HighWaterMark.Decimal.String()
		}
		fmt.Fprintf(tw, "%s %s %s%%\ttrigger %s high %s sold %s/%s active %t\n",
			st.RiskType, st.Kind, st.Percentage, st.TriggerPrice, hwm, st.SoldAmount, st.SellAmount, st.Active)
	}
	return tw.Flush()
}
