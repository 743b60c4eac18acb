package shipping

import (
	"context"

	"github.com/zfrey55/shackpck-sub000/internal/models"
)

// Label is the result of a successful shipment creation.
type Label struct {
	TrackingNumber string `json:"tracking_number"`
	LabelURL       string `json:"label_url"`
}

// ShipmentRequest describes one outbound parcel.
type ShipmentRequest struct {
	OrderReference string
	Recipient      models.ShippingAddress
	Email          string
}

// Carrier is the shipping collaborator. Failures never block order creation;
// the order keeps label status FAILED and can be retried by hand.
type Carrier interface {
	CreateShipment(ctx context.Context, req ShipmentRequest) (*Label, error)
}
