package source

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/chrisdamba/foodrollup/internal/models"
	"github.com/chrisdamba/foodrollup/internal/rollup"
)

var csvColumns = []string{
	"id", "createdAt", "confirmedAt", "readyAt", "deliveredAt", "status", "total", "deliveryFee",
	"restaurantId", "restaurantName", "customerId", "customerEmail", "category", "cuisine", "driverId",
	"region", "paymentMethod", "line1", "city", "postcode", "items",
}

// Encode writes orders in a format Decode reads back.
func Encode(w io.Writer, orders []models.Order, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if orders == nil {
			orders = make([]models.Order, 0)
		}
		return enc.Encode(orders)
	case FormatNDJSON:
		enc := json.NewEncoder(w)
		for i := range orders {
			if err := enc.Encode(orders[i]); err != nil {
				return fmt.Errorf("error encoding order %s: %w", orders[i].ID, err)
			}
		}
		return nil
	case FormatCSV:
		return encodeCSV(w, orders)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

func encodeCSV(w io.Writer, orders []models.Order) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvColumns); err != nil {
		return err
	}
	for _, o := range orders {
		items, err := json.Marshal(o.Items)
		if err != nil {
			return fmt.Errorf("error encoding items of order %s: %w", o.ID, err)
		}
		row := []string{
			o.ID,
			timeCell(o.CreatedAt), timeCell(o.ConfirmedAt), timeCell(o.ReadyAt), timeCell(o.DeliveredAt),
			string(o.Status),
			strconv.FormatFloat(o.Total, 'f', -1, 64),
			strconv.FormatFloat(o.DeliveryFee, 'f', -1, 64),
			o.RestaurantID, o.RestaurantName, o.CustomerID, o.CustomerEmail,
			o.Category, o.Cuisine, o.DriverID, o.Region, o.PaymentMethod,
			o.Address.Line1, o.Address.City, o.Address.Postcode,
			string(items),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func timeCell(v any) string {
	t, ok := rollup.NormalizeTime(v)
	if !ok {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
