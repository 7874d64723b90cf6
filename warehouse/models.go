package warehouse

// Dimension, fact and bridge tables of the road safety star schema. Catalog
// dimensions use their business code as the surrogate key; the rest are
// auto-incremented.

type DimDateTime struct {
	IDDateTime int    `gorm:"column:idDateTime;primaryKey;autoIncrement:false"`
	DateTime   string `gorm:"column:DateTime;uniqueIndex"`
	Date       string `gorm:"column:Date"`
	Year       int    `gorm:"column:Year"`
	Month      int    `gorm:"column:Month"`
	Day        int    `gorm:"column:Day"`
	Hour       int    `gorm:"column:Hour"`
	Minute     int    `gorm:"column:Minute"`
	MonthName  string `gorm:"column:MonthName"`
	WeekDay    string `gorm:"column:WeekDay"`
	WeekNumber int    `gorm:"column:WeekNumber"`
	Period     string `gorm:"column:Period"`
}

func (DimDateTime) TableName() string { return "dim_DateTime" }

type DimSection struct {
	IDSection   int    `gorm:"column:idSection;primaryKey;autoIncrement:false"`
	SectionName string `gorm:"column:SectionName"`
}

func (DimSection) TableName() string { return "dim_Section" }

type DimLane struct {
	IDLane    int    `gorm:"column:idLane;primaryKey"`
	LaneValue int    `gorm:"column:LaneValue;uniqueIndex"`
	LaneName  string `gorm:"column:LaneName"`
}

func (DimLane) TableName() string { return "dim_Lane" }

type DimAccidentType struct {
	IDAccidentType   int    `gorm:"column:idAccidentType;primaryKey;autoIncrement:false"`
	AccidentTypeName string `gorm:"column:AccidentTypeName"`
}

func (DimAccidentType) TableName() string { return "dim_AccidentType" }

type DimSurfaceCondition struct {
	IDSurfaceCondition   int    `gorm:"column:idSurfaceCondition;primaryKey;autoIncrement:false"`
	SurfaceConditionName string `gorm:"column:SurfaceConditionName"`
}

func (DimSurfaceCondition) TableName() string { return "dim_SurfaceCondition" }

type DimWeather struct {
	IDWeather   int    `gorm:"column:idWeather;primaryKey;autoIncrement:false"`
	WeatherName string `gorm:"column:WeatherName"`
}

func (DimWeather) TableName() string { return "dim_Weather" }

type DimLuminosity struct {
	IDLuminosity   int    `gorm:"column:idLuminosity;primaryKey;autoIncrement:false"`
	LuminosityName string `gorm:"column:LuminosityName"`
}

func (DimLuminosity) TableName() string { return "dim_Luminosity" }

type DimArtificialLight struct {
	IDArtificialLight        int    `gorm:"column:idArtificialLight;primaryKey;autoIncrement:false"`
	ArtificialLightCondition string `gorm:"column:ArtificialLightCondition"`
}

func (DimArtificialLight) TableName() string { return "dim_ArtificialLight" }

type DimRelativeLocation struct {
	IDRelativeLocation   int    `gorm:"column:idRelativeLocation;primaryKey;autoIncrement:false"`
	RelativeLocationName string `gorm:"column:RelativeLocationName"`
}

func (DimRelativeLocation) TableName() string { return "dim_RelativeLocation" }

type DimProbableCause struct {
	IDProbableCause   int    `gorm:"column:idProbableCause;primaryKey"`
	ProbableCauseType string `gorm:"column:ProbableCauseType;uniqueIndex:uniq_cause"`
	CauseValue        int    `gorm:"column:CauseValue;uniqueIndex:uniq_cause"`
	CauseValueName    string `gorm:"column:CauseValueName"`
}

func (DimProbableCause) TableName() string { return "dim_ProbableCause" }

type DimResponse struct {
	IDResponse        int    `gorm:"column:idResponse;primaryKey"`
	ResponseType      string `gorm:"column:ResponseType;uniqueIndex:uniq_response"`
	ResponseValue     int    `gorm:"column:ResponseValue;uniqueIndex:uniq_response"`
	ResponseValueName string `gorm:"column:ResponseValueName"`
}

func (DimResponse) TableName() string { return "dim_Response" }

type DimEnvironment struct {
	IDEnvironment        int    `gorm:"column:idEnvironment;primaryKey"`
	EnvironmentCondition string `gorm:"column:EnvironmentCondition;uniqueIndex:uniq_environment"`
	EnvironmentValue     int    `gorm:"column:EnvironmentValue;uniqueIndex:uniq_environment"`
	EnvironmentValueName string `gorm:"column:EnvironmentValueName"`
}

func (DimEnvironment) TableName() string { return "dim_Environment" }

type DimConsequence struct {
	IDConsequence   int    `gorm:"column:idConsequence;primaryKey"`
	ConsequenceType string `gorm:"column:ConsequenceType;uniqueIndex"`
}

func (DimConsequence) TableName() string { return "dim_Consequence" }

type DimAffected struct {
	IDAffected   int    `gorm:"column:idAffected;primaryKey"`
	AffectedType string `gorm:"column:AffectedType;uniqueIndex"`
}

func (DimAffected) TableName() string { return "dim_Affected" }

type DimServiceType struct {
	IDServiceType int    `gorm:"column:idServiceType;primaryKey;autoIncrement:false"`
	ServiceName   string `gorm:"column:ServiceName"`
}

func (DimServiceType) TableName() string { return "dim_ServiceType" }

type DimManeuverType struct {
	IDManeuverType int    `gorm:"column:idManeuverType;primaryKey;autoIncrement:false"`
	ManeuverType   string `gorm:"column:ManeuverType"`
}

func (DimManeuverType) TableName() string { return "dim_ManeuverType" }

type DimConsequenceType struct {
	IDConsequenceType int    `gorm:"column:idConsequenceType;primaryKey;autoIncrement:false"`
	ConsequenceType   string `gorm:"column:ConsequenceType"`
}

func (DimConsequenceType) TableName() string { return "dim_ConsequenceType" }

// DimVehicleDescription grows while vehicles are loaded; Registration is the
// natural key.
type DimVehicleDescription struct {
	IDVehicleDescription int    `gorm:"column:idVehicleDescription;primaryKey"`
	Registration         string `gorm:"column:Registration;uniqueIndex"`
	Brand                string `gorm:"column:Brand"`
}

func (DimVehicleDescription) TableName() string { return "dim_VehicleDescription" }

type DimPlaza struct {
	IDPlaza   int    `gorm:"column:idPlaza;primaryKey;autoIncrement:false"`
	PlazaName string `gorm:"column:PlazaName;uniqueIndex"`
}

func (DimPlaza) TableName() string { return "dim_Plaza" }

type DimDirection struct {
	IDDirection   int    `gorm:"column:idDirection;primaryKey;autoIncrement:false"`
	DirectionName string `gorm:"column:DirectionName;uniqueIndex"`
}

func (DimDirection) TableName() string { return "dim_Direction" }

type DimVehicleType struct {
	IDVehicleType int    `gorm:"column:idVehicleType;primaryKey;autoIncrement:false"`
	VehicleType   string `gorm:"column:VehicleType;uniqueIndex"`
}

func (DimVehicleType) TableName() string { return "dim_VehicleType" }

type DimCategory struct {
	IDCategory    int    `gorm:"column:idCategory;primaryKey;autoIncrement:false"`
	CategoryName  string `gorm:"column:CategoryName;uniqueIndex"`
	IDVehicleType int    `gorm:"column:idVehicleType"`
}

func (DimCategory) TableName() string { return "dim_Category" }

type DimVehicleTypeValue struct {
	IDVehicleTypeValue int    `gorm:"column:idVehicleTypeValue;primaryKey;autoIncrement:false"`
	VehicleTypeName    string `gorm:"column:VehicleTypeName"`
	IDCategory         *int   `gorm:"column:idCategory"`
}

func (DimVehicleTypeValue) TableName() string { return "dim_VehicleTypeValue" }

// DimKm is a one metre grid of the road. Element and Place label the
// stretch that follows a point of interest.
type DimKm struct {
	IDKm    int     `gorm:"column:idKm;primaryKey;autoIncrement:false"`
	Km      float64 `gorm:"column:Km;uniqueIndex"`
	Element *string `gorm:"column:Element"`
	Place   *string `gorm:"column:Place"`
	IDPlaza *int    `gorm:"column:idPlaza"`
}

func (DimKm) TableName() string { return "dim_Km" }

// Fact and bridge tables carry plain id columns. Every id is resolved
// against the lookup cache before insert, so no association fields are
// declared.

type FactAccident struct {
	IDAccident           string `gorm:"column:idAccident;primaryKey"`
	IDDateTime           int    `gorm:"column:idDateTime;index"`
	IDSection            int    `gorm:"column:idSection"`
	IDAccidentType       int    `gorm:"column:idAccidentType"`
	IDRelativeLocation   int    `gorm:"column:idRelativeLocation"`
	IDSurfaceCondition   int    `gorm:"column:idSurfaceCondition"`
	IDWeather            int    `gorm:"column:idWeather"`
	IDLuminosity         int    `gorm:"column:idLuminosity"`
	IDArtificialLight    int    `gorm:"column:idArtificialLight"`
	InfrastructureDamage string `gorm:"column:InfrastructureDamage"`
	Description          string `gorm:"column:Description"`
	TotalVehicles        int    `gorm:"column:totalVehicles"`
}

func (FactAccident) TableName() string { return "factAccident" }

type FactAccidentAffected struct {
	IDAccidentAffected int    `gorm:"column:idAccidentAffected;primaryKey"`
	IDAccident         string `gorm:"column:idAccident;uniqueIndex:uniq_accident_affected"`
	IDConsequence      int    `gorm:"column:idConsequence;uniqueIndex:uniq_accident_affected"`
	IDAffected         int    `gorm:"column:idAffected;uniqueIndex:uniq_accident_affected"`
	AffectedCount      int    `gorm:"column:AffectedCount"`
}

func (FactAccidentAffected) TableName() string { return "factAccidentAffected" }

type FactVehicleAccident struct {
	IDVehicleAccident    int    `gorm:"column:idVehicleAccident;primaryKey"`
	IDAccident           string `gorm:"column:idAccident;index"`
	IDVehicleDescription int    `gorm:"column:idVehicleDescription"`
}

func (FactVehicleAccident) TableName() string { return "factVehicleAccident" }

type FactTraffic struct {
	IDTraffic     int `gorm:"column:idTraffic;primaryKey"`
	IDDateTime    int `gorm:"column:idDateTime;index"`
	IDPlaza       int `gorm:"column:idPlaza"`
	IDDirection   int `gorm:"column:idDirection"`
	IDCategory    int `gorm:"column:idCategory"`
	TrafficVolume int `gorm:"column:trafficVolume"`
}

func (FactTraffic) TableName() string { return "factTraffic" }

// Accident bridges. Each pair is unique; reloading the same pair is a no-op.

type BridgeAccidentLane struct {
	IDAccident string `gorm:"column:idAccident;primaryKey"`
	IDLane     int    `gorm:"column:idLane;primaryKey;autoIncrement:false"`
}

func (BridgeAccidentLane) TableName() string { return "bridge_Accident_Lane" }

type BridgeAccidentProbableCause struct {
	IDAccident      string `gorm:"column:idAccident;primaryKey"`
	IDProbableCause int    `gorm:"column:idProbableCause;primaryKey;autoIncrement:false"`
}

func (BridgeAccidentProbableCause) TableName() string { return "bridge_Accident_ProbableCause" }

type BridgeAccidentResponse struct {
	IDAccident string `gorm:"column:idAccident;primaryKey"`
	IDResponse int    `gorm:"column:idResponse;primaryKey;autoIncrement:false"`
}

func (BridgeAccidentResponse) TableName() string { return "bridge_Accident_Response" }

type BridgeAccidentEnvironment struct {
	IDAccident    string `gorm:"column:idAccident;primaryKey"`
	IDEnvironment int    `gorm:"column:idEnvironment;primaryKey;autoIncrement:false"`
}

func (BridgeAccidentEnvironment) TableName() string { return "bridge_Accident_Environment" }

type BridgeAccidentKm struct {
	IDAccident string `gorm:"column:idAccident;primaryKey"`
	IDKm       int    `gorm:"column:idKm;primaryKey;autoIncrement:false"`
}

func (BridgeAccidentKm) TableName() string { return "bridge_Accident_Km" }

// Vehicle bridges.

type BridgeVehicleServiceType struct {
	IDVehicleAccident int `gorm:"column:idVehicleAccident;primaryKey;autoIncrement:false"`
	IDServiceType     int `gorm:"column:idServiceType;primaryKey;autoIncrement:false"`
}

func (BridgeVehicleServiceType) TableName() string { return "bridge_VehicleAccident_ServiceType" }

type BridgeVehicleTypeValue struct {
	IDVehicleAccident  int `gorm:"column:idVehicleAccident;primaryKey;autoIncrement:false"`
	IDVehicleTypeValue int `gorm:"column:idVehicleTypeValue;primaryKey;autoIncrement:false"`
}

func (BridgeVehicleTypeValue) TableName() string { return "bridge_VehicleAccident_VehicleTypeValue" }

type BridgeVehicleManeuverType struct {
	IDVehicleAccident int `gorm:"column:idVehicleAccident;primaryKey;autoIncrement:false"`
	IDManeuverType    int `gorm:"column:idManeuverType;primaryKey;autoIncrement:false"`
}

func (BridgeVehicleManeuverType) TableName() string { return "bridge_VehicleAccident_ManeuverType" }

type BridgeVehicleConsequenceType struct {
	IDVehicleAccident int `gorm:"column:idVehicleAccident;primaryKey;autoIncrement:false"`
	IDConsequenceType int `gorm:"column:idConsequenceType;primaryKey;autoIncrement:false"`
}

func (BridgeVehicleConsequenceType) TableName() string { return "bridge_VehicleAccident_ConsequenceType" }

type BridgeVehicleLane struct {
	IDVehicleAccident int `gorm:"column:idVehicleAccident;primaryKey;autoIncrement:false"`
	IDLane            int `gorm:"column:idLane;primaryKey;autoIncrement:false"`
}

func (BridgeVehicleLane) TableName() string { return "bridge_VehicleAccident_Lane" }

// LedgerEntry records a clean file whose facts were loaded. One table per
// category shares this shape.
type LedgerEntry struct {
	FileName        string `gorm:"column:FileName;primaryKey"`
	LoadedTimestamp string `gorm:"column:LoadedTimestamp"`
}

func allModels() []any {
	return []any{
		&DimDateTime{}, &DimSection{}, &DimLane{},
		&DimAccidentType{}, &DimSurfaceCondition{}, &DimWeather{}, &DimLuminosity{}, &DimArtificialLight{}, &DimRelativeLocation{},
		&DimProbableCause{}, &DimResponse{}, &DimEnvironment{}, &DimConsequence{}, &DimAffected{},
		&DimServiceType{}, &DimManeuverType{}, &DimConsequenceType{}, &DimVehicleDescription{},
		&DimPlaza{}, &DimDirection{}, &DimVehicleType{}, &DimCategory{}, &DimVehicleTypeValue{}, &DimKm{},
		&FactAccident{}, &FactAccidentAffected{}, &FactVehicleAccident{}, &FactTraffic{},
		&BridgeAccidentLane{}, &BridgeAccidentProbableCause{}, &BridgeAccidentResponse{}, &BridgeAccidentEnvironment{}, &BridgeAccidentKm{},
		&BridgeVehicleServiceType{}, &BridgeVehicleTypeValue{}, &BridgeVehicleManeuverType{}, &BridgeVehicleConsequenceType{}, &BridgeVehicleLane{},
	}
}
