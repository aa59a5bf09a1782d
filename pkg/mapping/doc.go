// Package mapping holds the declarative mapping model consumed by the
// function pipeline and loads it from mapping files.
//
// A mapping file declares plugin function libraries and one Template per
// legacy control type. Each template lists its properties in evaluation
// order, every property optionally carrying a function pipeline such as
//
//	{Text} = HtmlEncode({Text}); {Title} = Prefix('Migrated: ', {Title})
//
// plus an optional selector expression that picks one of the template's
// mapping options.
//
// Two formats are read: the page transformation XML format
//
//	<PageTransformation>
//	  <AddOns>
//	    <AddOn Name="Contoso" Type="contoso.Functions" Assembly="contoso.so"/>
//	  </AddOns>
//	  <WebParts>
//	    <WebPart Type="ContentEditor">
//	      <Properties>
//	        <Property Name="Content" Type="string" Functions="TextCleanup({Content})"/>
//	      </Properties>
//	      <Mappings Selector="IsEmpty({Content})">
//	        <Mapping Name="true"/>
//	        <Mapping Name="false" Default="true"/>
//	      </Mappings>
//	    </WebPart>
//	  </WebParts>
//	</PageTransformation>
//
// and equivalent YAML and TOML layouts (plugins / templates).
package mapping
