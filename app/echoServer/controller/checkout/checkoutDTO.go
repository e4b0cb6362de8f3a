package checkout

type StartDatesReq struct {
	ItemID    int64  `json:"item_id" validate:"required,gt=0"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

type SelectDeliveryReq struct {
	Token          string `json:"token" validate:"required"`
	DeliveryOption string `json:"delivery_option" validate:"required,oneof=pickup delivery"`
}

type SubmitDetailsReq struct {
	Token   string `json:"token" validate:"required"`
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required"`
	Aadhar  string `json:"aadhar" validate:"required"`
	Address string `json:"address" validate:"required"`
}

type PaymentMethodReq struct {
	Token  string `json:"token" validate:"required"`
	Method string `json:"method" validate:"required,oneof=online cod"`
}
