// Package receipt формирует логические поля квитанции о предоплате.
// Верстка документа не входит в задачу: поля отдаются как текст,
// а оформление остается за потребителем.
package receipt

import (
	"fmt"

	"aromos/internal/models"
)

// Receipt поля квитанции о полученной предоплате.
type Receipt struct {
	Business  string `json:"business"`
	GuestName string `json:"guest_name"`
	UnitName  string `json:"unit_name"`
	Checkin   string `json:"checkin"`
	Checkout  string `json:"checkout"`
	Guests    int    `json:"guests"`
	Deposit   string `json:"deposit"`
	Total     string `json:"total"`
	IssuedFor string `json:"issued_for"`
}

// Build собирает квитанцию по брони. unitName — отображаемое имя
// бунгало; идентификатор в документе не показывается.
func Build(businessName string, r *models.Reservation, unitName string) Receipt {
	return Receipt{
		Business:  businessName,
		GuestName: r.GuestName,
		UnitName:  unitName,
		Checkin:   r.Checkin,
		Checkout:  r.Checkout,
		Guests:    r.Guests,
		Deposit:   r.Deposit.String(),
		Total:     r.TotalAmount.String(),
		IssuedFor: r.ID,
	}
}

// Lines отдает квитанцию построчно для печати или логов.
func (rc Receipt) Lines() []string {
	return []string{
		rc.Business,
		fmt.Sprintf("Recibo de seña - reserva %s", rc.IssuedFor),
		fmt.Sprintf("Huésped: %s", rc.GuestName),
		fmt.Sprintf("Alojamiento: %s", rc.UnitName),
		fmt.Sprintf("Desde %s hasta %s, %d personas", rc.Checkin, rc.Checkout, rc.Guests),
		fmt.Sprintf("Seña recibida: $%s de un total de $%s", rc.Deposit, rc.Total),
	}
}
