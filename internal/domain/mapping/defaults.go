package mapping

// Static default schemas and rule-based default mapping tables, consolidated
// here for every (system, entity) pair the product advertises. The registry
// serves these when a live provider is unreachable; the auto-map fallback
// serves the tables when the suggestion capability fails.

// ---------------------------------------------------------------------------
// Default source schemas
// ---------------------------------------------------------------------------

var defaultSourceSchemas = map[MappingKey][]SourceField{
	{SystemCodeDynamics, EntityTypeAccount}: {
		{Name: "name", Label: "Account Name", Type: FieldTypeText},
		{Name: "accountnumber", Label: "Account Number", Type: FieldTypeText},
		{Name: "revenue", Label: "Annual Revenue", Type: FieldTypeMonetary},
		{Name: "numberofemployees", Label: "Number of Employees", Type: FieldTypeInteger},
		{Name: "industrycode", Label: "Industry", Type: FieldTypeText},
		{Name: "websiteurl", Label: "Website", Type: FieldTypeText},
		{Name: "primarycontactid", Label: "Primary Contact", Type: FieldTypeReference},
		{Name: "ownerid", Label: "Owner", Type: FieldTypeReference},
		{Name: "createdon", Label: "Created On", Type: FieldTypeDateTime},
	},
	{SystemCodeDynamics, EntityTypeContact}: {
		{Name: "fullname", Label: "Full Name", Type: FieldTypeText},
		{Name: "emailaddress1", Label: "Email", Type: FieldTypeText},
		{Name: "telephone1", Label: "Business Phone", Type: FieldTypeText},
		{Name: "jobtitle", Label: "Job Title", Type: FieldTypeText},
		{Name: "parentcustomerid", Label: "Company Name", Type: FieldTypeReference},
		{Name: "birthdate", Label: "Birthday", Type: FieldTypeDate},
		{Name: "donotemail", Label: "Do Not Allow Emails", Type: FieldTypeBoolean},
		{Name: "createdon", Label: "Created On", Type: FieldTypeDateTime},
	},
	{SystemCodeDynamics, EntityTypeOpportunity}: {
		{Name: "name", Label: "Topic", Type: FieldTypeText},
		{Name: "estimatedvalue", Label: "Est. Revenue", Type: FieldTypeMonetary},
		{Name: "estimatedclosedate", Label: "Est. Close Date", Type: FieldTypeDate},
		{Name: "closeprobability", Label: "Probability", Type: FieldTypeInteger},
		{Name: "customerid", Label: "Potential Customer", Type: FieldTypeReference},
		{Name: "stepname", Label: "Pipeline Phase", Type: FieldTypeText},
		{Name: "createdon", Label: "Created On", Type: FieldTypeDateTime},
	},
	{SystemCodeGWorkspace, EntityTypeContact}: {
		{Name: "full_name", Label: "Full Name", Type: FieldTypeText},
		{Name: "primary_email", Label: "Primary Email", Type: FieldTypeText},
		{Name: "org_title", Label: "Title", Type: FieldTypeText},
		{Name: "org_department", Label: "Department", Type: FieldTypeText},
		{Name: "manager_email", Label: "Manager Email", Type: FieldTypeText},
		{Name: "phones", Label: "Phones", Type: FieldTypeList},
		{Name: "is_suspended", Label: "Suspended", Type: FieldTypeBoolean},
		{Name: "creation_time", Label: "Creation Time", Type: FieldTypeDateTime},
	},
	{SystemCodePipedrive, EntityTypeAccount}: {
		{Name: "name", Label: "Name", Type: FieldTypeText},
		{Name: "owner_id", Label: "Owner", Type: FieldTypeReference},
		{Name: "address", Label: "Address", Type: FieldTypeText},
		{Name: "people_count", Label: "People", Type: FieldTypeInteger},
		{Name: "open_deals_count", Label: "Open Deals", Type: FieldTypeInteger},
		{Name: "active_flag", Label: "Active", Type: FieldTypeBoolean},
		{Name: "add_time", Label: "Created", Type: FieldTypeDateTime},
	},
	{SystemCodePipedrive, EntityTypeContact}: {
		{Name: "name", Label: "Name", Type: FieldTypeText},
		{Name: "email", Label: "Email", Type: FieldTypeText},
		{Name: "phone", Label: "Phone", Type: FieldTypeText},
		{Name: "org_id", Label: "Organization", Type: FieldTypeReference},
		{Name: "owner_id", Label: "Owner", Type: FieldTypeReference},
		{Name: "add_time", Label: "Created", Type: FieldTypeDateTime},
	},
	{SystemCodePipedrive, EntityTypeOpportunity}: {
		{Name: "title", Label: "Title", Type: FieldTypeText},
		{Name: "value", Label: "Value", Type: FieldTypeMonetary},
		{Name: "currency", Label: "Currency", Type: FieldTypeText},
		{Name: "status", Label: "Status", Type: FieldTypeText},
		{Name: "probability", Label: "Probability", Type: FieldTypeFloat},
		{Name: "expected_close_date", Label: "Expected Close Date", Type: FieldTypeDate},
		{Name: "org_id", Label: "Organization", Type: FieldTypeReference},
		{Name: "add_time", Label: "Created", Type: FieldTypeDateTime},
	},
}

// DefaultSourceSchema returns the baked-in source schema for a known
// (system, entity) pair.
func DefaultSourceSchema(system SystemCode, entity EntityType) (SourceFieldSchema, bool) {
	fields, ok := defaultSourceSchemas[MappingKey{System: system, Entity: entity}]
	if !ok {
		return SourceFieldSchema{}, false
	}
	out := make([]SourceField, len(fields))
	copy(out, fields)
	return SourceFieldSchema{System: system, Entity: entity, Fields: out}, true
}

// ---------------------------------------------------------------------------
// Default canonical schemas
// ---------------------------------------------------------------------------

var defaultCanonicalSchemas = map[EntityType][]CanonicalField{
	EntityTypeAccount: {
		{Name: "name", Type: FieldTypeText, Required: true, Description: "Company name"},
		{Name: "external_code", Type: FieldTypeText, Required: true, Description: "Identifier of the record in the source system"},
		{Name: "industry", Type: FieldTypeText, Description: "Industry classification"},
		{Name: "annual_revenue", Type: FieldTypeMonetary, Description: "Reported annual revenue"},
		{Name: "employee_count", Type: FieldTypeInteger, Description: "Number of employees"},
		{Name: "website", Type: FieldTypeText, Description: "Company website URL"},
		{Name: "owner_name", Type: FieldTypeText, Description: "Name of the owning sales rep"},
		{Name: "created_at", Type: FieldTypeDateTime, Description: "When the record was created in the source system"},
	},
	EntityTypeContact: {
		{Name: "full_name", Type: FieldTypeText, Required: true, Description: "Person's full name"},
		{Name: "email", Type: FieldTypeText, Required: true, Description: "Primary email address"},
		{Name: "phone", Type: FieldTypeText, Description: "Primary phone number"},
		{Name: "title", Type: FieldTypeText, Description: "Job title"},
		{Name: "account_name", Type: FieldTypeText, Description: "Name of the company the person belongs to"},
		{Name: "email_opt_out", Type: FieldTypeBoolean, Description: "Whether the person opted out of email"},
		{Name: "created_at", Type: FieldTypeDateTime, Description: "When the record was created in the source system"},
	},
	EntityTypeOpportunity: {
		{Name: "name", Type: FieldTypeText, Required: true, Description: "Deal name"},
		{Name: "amount", Type: FieldTypeMonetary, Required: true, Description: "Deal amount"},
		{Name: "close_date", Type: FieldTypeDate, Description: "Expected close date"},
		{Name: "stage", Type: FieldTypeText, Description: "Pipeline stage"},
		{Name: "probability", Type: FieldTypeFloat, Description: "Win probability, 0-100"},
		{Name: "account_name", Type: FieldTypeText, Description: "Name of the related company"},
		{Name: "created_at", Type: FieldTypeDateTime, Description: "When the record was created in the source system"},
	},
}

// DefaultCanonicalSchema returns the baked-in canonical schema for a known
// entity type.
func DefaultCanonicalSchema(entity EntityType) (CanonicalFieldSchema, bool) {
	fields, ok := defaultCanonicalSchemas[entity]
	if !ok {
		return CanonicalFieldSchema{}, false
	}
	out := make([]CanonicalField, len(fields))
	copy(out, fields)
	return CanonicalFieldSchema{Entity: entity, Fields: out}, true
}

// ---------------------------------------------------------------------------
// Default mapping tables
// ---------------------------------------------------------------------------

// defaultMappingTables are the hand-authored fallback mappings used when the
// suggestion capability is unavailable. Confidence reflects asserted
// certainty: 0.9-1.0 for direct name correspondences, lower for inferred
// relationships.
var defaultMappingTables = map[MappingKey][]FieldMapping{
	{SystemCodeDynamics, EntityTypeAccount}: {
		{SourceField: "name", TargetField: "name", Transform: TransformNone, Confidence: 1.0},
		{SourceField: "accountnumber", TargetField: "external_code", Transform: TransformToString, Confidence: 0.95},
		{SourceField: "revenue", TargetField: "annual_revenue", Transform: TransformToFloat, Confidence: 0.95},
		{SourceField: "numberofemployees", TargetField: "employee_count", Transform: TransformToInt, Confidence: 0.95},
		{SourceField: "industrycode", TargetField: "industry", Transform: TransformToString, Confidence: 0.85},
		{SourceField: "websiteurl", TargetField: "website", Transform: TransformNone, Confidence: 0.9},
		{SourceField: "ownerid", TargetField: "owner_name", Transform: TransformExtractName, Confidence: 0.7},
		{SourceField: "createdon", TargetField: "created_at", Transform: TransformDateParse, Confidence: 0.9},
	},
	{SystemCodeDynamics, EntityTypeContact}: {
		{SourceField: "fullname", TargetField: "full_name", Transform: TransformNone, Confidence: 1.0},
		{SourceField: "emailaddress1", TargetField: "email", Transform: TransformNone, Confidence: 0.95},
		{SourceField: "telephone1", TargetField: "phone", Transform: TransformToString, Confidence: 0.9},
		{SourceField: "jobtitle", TargetField: "title", Transform: TransformNone, Confidence: 0.95},
		{SourceField: "parentcustomerid", TargetField: "account_name", Transform: TransformExtractName, Confidence: 0.7},
		{SourceField: "donotemail", TargetField: "email_opt_out", Transform: TransformBoolean, Confidence: 0.85},
		{SourceField: "createdon", TargetField: "created_at", Transform: TransformDateParse, Confidence: 0.9},
	},
	{SystemCodeDynamics, EntityTypeOpportunity}: {
		{SourceField: "name", TargetField: "name", Transform: TransformNone, Confidence: 1.0},
		{SourceField: "estimatedvalue", TargetField: "amount", Transform: TransformToFloat, Confidence: 0.9},
		{SourceField: "estimatedclosedate", TargetField: "close_date", Transform: TransformDateParse, Confidence: 0.9},
		{SourceField: "closeprobability", TargetField: "probability", Transform: TransformToFloat, Confidence: 0.85},
		{SourceField: "customerid", TargetField: "account_name", Transform: TransformExtractName, Confidence: 0.7},
		{SourceField: "stepname", TargetField: "stage", Transform: TransformNone, Confidence: 0.8},
		{SourceField: "createdon", TargetField: "created_at", Transform: TransformDateParse, Confidence: 0.9},
	},
	{SystemCodeGWorkspace, EntityTypeContact}: {
		{SourceField: "full_name", TargetField: "full_name", Transform: TransformNone, Confidence: 1.0},
		{SourceField: "primary_email", TargetField: "email", Transform: TransformNone, Confidence: 0.95},
		{SourceField: "org_title", TargetField: "title", Transform: TransformNone, Confidence: 0.9},
		{SourceField: "org_department", TargetField: "account_name", Transform: TransformNone, Confidence: 0.5},
		{SourceField: "creation_time", TargetField: "created_at", Transform: TransformDateParse, Confidence: 0.9},
	},
	{SystemCodePipedrive, EntityTypeAccount}: {
		{SourceField: "name", TargetField: "name", Transform: TransformNone, Confidence: 1.0},
		{SourceField: "owner_id", TargetField: "owner_name", Transform: TransformExtractName, Confidence: 0.75},
		{SourceField: "add_time", TargetField: "created_at", Transform: TransformDateParse, Confidence: 0.9},
	},
	{SystemCodePipedrive, EntityTypeContact}: {
		{SourceField: "name", TargetField: "full_name", Transform: TransformNone, Confidence: 0.95},
		{SourceField: "email", TargetField: "email", Transform: TransformNone, Confidence: 1.0},
		{SourceField: "phone", TargetField: "phone", Transform: TransformToString, Confidence: 0.95},
		{SourceField: "org_id", TargetField: "account_name", Transform: TransformExtractName, Confidence: 0.75},
		{SourceField: "add_time", TargetField: "created_at", Transform: TransformDateParse, Confidence: 0.9},
	},
	{SystemCodePipedrive, EntityTypeOpportunity}: {
		{SourceField: "title", TargetField: "name", Transform: TransformNone, Confidence: 0.95},
		{SourceField: "value", TargetField: "amount", Transform: TransformToFloat, Confidence: 0.95},
		{SourceField: "expected_close_date", TargetField: "close_date", Transform: TransformDateParse, Confidence: 0.9},
		{SourceField: "probability", TargetField: "probability", Transform: TransformToFloat, Confidence: 0.9},
		{SourceField: "status", TargetField: "stage", Transform: TransformNone, Confidence: 0.7},
		{SourceField: "org_id", TargetField: "account_name", Transform: TransformExtractName, Confidence: 0.75},
		{SourceField: "add_time", TargetField: "created_at", Transform: TransformDateParse, Confidence: 0.9},
	},
}

// DefaultMappingTable returns the rule-based default mapping entries for a
// known (system, entity) pair, each tagged provenance=default. Unknown pairs
// return false; callers treat that as an empty replacement, not an error.
func DefaultMappingTable(system SystemCode, entity EntityType) ([]FieldMapping, bool) {
	table, ok := defaultMappingTables[MappingKey{System: system, Entity: entity}]
	if !ok {
		return nil, false
	}
	out := make([]FieldMapping, len(table))
	for i, m := range table {
		m.Provenance = ProvenanceDefault
		out[i] = m
	}
	return out, true
}
