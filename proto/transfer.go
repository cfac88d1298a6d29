package proto

// 金額一律以十進位字串傳遞 (e.g. "10.500")，避免浮點誤差

type TransferRequest struct {
	FromAccountId string `json:"from_account_id"`
	ToAccountId   string `json:"to_account_id"`
	Amount        string `json:"amount"`
}

type TransferResponse struct {
	TransferId string `json:"transfer_id"`
}

type CreateAccountRequest struct {
	AccountId string `json:"account_id"`
	Balance   string `json:"balance"`
}

type GetAccountRequest struct {
	AccountId string `json:"account_id"`
}

type Account struct {
	AccountId string `json:"account_id"`
	Balance   string `json:"balance"`
}
