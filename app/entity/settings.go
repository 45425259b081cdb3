package entity

const (
	SettingAPIUID = "fattureincloud_api_uid"
	SettingAPIKey = "fattureincloud_api_key"
	SettingWallet = "fattureincloud_wallet"
)

type Settings struct {
	APIUID string
	APIKey string
	Wallet string
}
