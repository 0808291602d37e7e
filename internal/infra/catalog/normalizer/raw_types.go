package normalizer

type RawDesiredState struct {
	Proxy            *RawProxyConfig      `mapstructure:"proxy"`
	UpdateSites      []RawSourceSpec      `mapstructure:"updateSites"`
	Required         []RawRequirementSpec `mapstructure:"required"`
	DefaultSiteURL   string               `mapstructure:"defaultSiteURL"`
	StrictDuplicates bool                 `mapstructure:"strictDuplicates"`
}

type RawProxyConfig struct {
	Host     string   `mapstructure:"host"`
	Port     int      `mapstructure:"port"`
	User     string   `mapstructure:"user"`
	Password string   `mapstructure:"password"`
	NoProxy  []string `mapstructure:"noProxy"`
}

type RawSourceSpec struct {
	ID  string `mapstructure:"id"`
	URL string `mapstructure:"url"`
}

type RawRequirementSpec struct {
	ID         string `mapstructure:"id"`
	MinVersion string `mapstructure:"minVersion"`
}
